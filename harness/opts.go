// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"fmt"

	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/model"
	"github.com/choria-io/gauntlet/session"
)

// Option is a functional option for configuring the harness
type Option func(*Gauntlet) error

// WithSessionDirectory stores session events in a directory of files rather than memory
func WithSessionDirectory(path string) Option {
	return func(g *Gauntlet) error {
		log, err := g.Logger("session", "directory", "path", path)
		if err != nil {
			return err
		}

		sess, err := session.NewDirectorySessionStore(path, g.settings, log, g.userLogger)
		if err != nil {
			return err
		}

		g.session = sess

		return nil
	}
}

// WithSettings sets the session settings derived from command line options
func WithSettings(settings model.Settings) Option {
	return func(g *Gauntlet) error {
		if settings.Device == "" {
			settings.Device = model.DeviceGPU
		}

		if settings.Device != model.DeviceCPU && settings.Device != model.DeviceGPU {
			return fmt.Errorf("device must be one of %q or %q", model.DeviceCPU, model.DeviceGPU)
		}

		g.settings = settings

		return nil
	}
}

// WithNoop puts the harness in noop mode, nothing is downloaded or extracted
func WithNoop() Option {
	return func(g *Gauntlet) error {
		g.noop = true

		return nil
	}
}

// WithExtraFacts merges additional facts over the gathered system facts
func WithExtraFacts(facts map[string]any) Option {
	return func(g *Gauntlet) error {
		if facts == nil {
			facts = make(map[string]any)
		}

		g.extraFacts = facts

		return nil
	}
}

// WithGates merges gate definitions into the registry
func WithGates(defs map[string]model.Conditions) Option {
	return func(g *Gauntlet) error {
		for id, cond := range defs {
			err := g.gates.Register(id, cond)
			if err != nil {
				return err
			}
		}

		return nil
	}
}

func mergeFacts(target map[string]any, source map[string]any) map[string]any {
	return iu.DeepMergeMap(target, source)
}
