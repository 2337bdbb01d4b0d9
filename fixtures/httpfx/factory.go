// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package httpfx

import (
	"github.com/choria-io/gauntlet/internal/registry"
	"github.com/choria-io/gauntlet/model"
)

func Register() {
	registry.MustRegister(&factory{})
}

type factory struct{}

func (p *factory) Name() string      { return ProviderName }
func (p *factory) Schemes() []string { return []string{"http", "https"} }
func (p *factory) New(log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	return NewHttpProvider(log, runner)
}
