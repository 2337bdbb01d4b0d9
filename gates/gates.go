// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package gates maps test identifiers to a closed set of gating conditions
// and decides before execution if a test should be skipped
package gates

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/choria-io/gauntlet/model"
)

// Registry holds the gating conditions attached to test identifiers
type Registry struct {
	gates map[string]model.Conditions
	mu    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{gates: make(map[string]model.Conditions)}
}

// Register attaches conditions to a test identifier, replacing any previous conditions
func (r *Registry) Register(testID string, cond model.Conditions) error {
	if testID == "" {
		return fmt.Errorf("test identifier cannot be empty")
	}

	err := cond.Validate()
	if err != nil {
		return fmt.Errorf("%s: %w", testID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.gates[testID] = cond

	return nil
}

// MustRegister attaches conditions to a test identifier and panics on invalid conditions
func (r *Registry) MustRegister(testID string, cond model.Conditions) {
	err := r.Register(testID, cond)
	if err != nil {
		panic(err)
	}
}

// Lookup returns the conditions for a test identifier
func (r *Registry) Lookup(testID string) (model.Conditions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cond, ok := r.gates[testID]
	if !ok {
		return model.Conditions{}, fmt.Errorf("%w: %s", model.ErrUnknownGate, testID)
	}

	return cond, nil
}

// IDs returns all registered test identifiers sorted alphabetically
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []string
	for k := range r.gates {
		res = append(res, k)
	}

	sort.Strings(res)

	return res
}

// LoadYaml merges gate definitions from a yaml document of the form
// test identifier to conditions
func (r *Registry) LoadYaml(raw []byte) error {
	defs := make(map[string]model.Conditions)

	err := yaml.Unmarshal(raw, &defs)
	if err != nil {
		return err
	}

	for id, cond := range defs {
		err = r.Register(id, cond)
		if err != nil {
			return err
		}
	}

	return nil
}
