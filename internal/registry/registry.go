// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/choria-io/gauntlet/model"
)

type providerEntry struct {
	factory model.ProviderFactory
}

var (
	providers = make(map[string]*providerEntry)
	schemes   = make(map[string]string)
	mu        sync.Mutex
)

// Clear removes all registered providers
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	providers = make(map[string]*providerEntry)
	schemes = make(map[string]string)
}

// Register registers a fixture provider factory
func Register(p any) error {
	switch tp := p.(type) {
	case model.ProviderFactory:
		return registerProvider(tp)
	default:
		return fmt.Errorf("cannot register provider of type %T", p)
	}
}

// MustRegister registers a fixture provider factory and panics if registration fails
func MustRegister(p any) {
	err := Register(p)
	if err != nil {
		panic(err)
	}
}

func registerProvider(p model.ProviderFactory) error {
	mu.Lock()
	defer mu.Unlock()

	pn := p.Name()

	_, ok := providers[pn]
	if ok {
		return model.ErrDuplicateProvider
	}

	for _, scheme := range p.Schemes() {
		scheme = strings.ToLower(scheme)
		if owner, ok := schemes[scheme]; ok {
			return fmt.Errorf("%w: scheme %q already handled by %q", model.ErrDuplicateProvider, scheme, owner)
		}
		schemes[scheme] = pn
	}

	providers[pn] = &providerEntry{factory: p}

	return nil
}

// Providers returns a list of all registered provider names
func Providers() []string {
	mu.Lock()
	defer mu.Unlock()

	var res []string
	for k := range providers {
		res = append(res, k)
	}

	sort.Strings(res)

	return res
}

// selectProviderForScheme finds a provider handling the given URL scheme
func selectProviderForScheme(scheme string, log model.Logger) (model.ProviderFactory, error) {
	mu.Lock()
	defer mu.Unlock()

	pn, ok := schemes[strings.ToLower(scheme)]
	if !ok {
		log.Debug("No provider registered for scheme", "scheme", scheme)
		return nil, model.ErrNoSuitableProvider
	}

	return providers[pn].factory, nil
}

// selectProviderByName finds a provider by its registered name
func selectProviderByName(name string, log model.Logger) (model.ProviderFactory, error) {
	mu.Lock()
	defer mu.Unlock()

	p, ok := providers[name]
	if !ok {
		log.Debug("No provider found", "provider", name)
		return nil, model.ErrProviderNotFound
	}

	return p.factory, nil
}

// FindSuitableProvider selects a provider for a fixture set, by forced name
// when provider is given else by the scheme of the fixture URL
func FindSuitableProvider(properties *model.FixtureSetProperties, log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	var (
		selected model.ProviderFactory
		err      error
	)

	switch {
	case properties.Provider != "":
		selected, err = selectProviderByName(properties.Provider, log)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrFixtureInvalid, err)
		}

	default:
		uri, perr := url.Parse(properties.Url)
		if perr != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrFixtureInvalid, perr)
		}

		selected, err = selectProviderForScheme(uri.Scheme, log)
		if err != nil {
			return nil, err
		}
	}

	if selected == nil {
		return nil, model.ErrNoSuitableProvider
	}

	return selected.New(log, runner)
}
