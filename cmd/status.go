// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"
	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/model"
	"github.com/goccy/go-yaml"
)

type statusCommand struct {
	jsonFormat bool
}

func registerStatusCommand(app *fisk.Application) {
	cmd := &statusCommand{}

	status := app.Command("status", "Shows the state of the test data cache").Action(cmd.statusAction)
	status.Flag("json", "Output status in JSON format").UnNegatableBoolVar(&cmd.jsonFormat)
}

func (c *statusCommand) statusAction(_ *fisk.ParseContext) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	g, _, err := newHarness(cfg, model.Settings{StrictCompat: true}, false)
	if err != nil {
		return err
	}

	meta, err := g.FixtureStatus(ctx, cfg.FixtureSet(g.Settings()))
	if err != nil {
		return err
	}

	if c.jsonFormat {
		j, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(j))

		return nil
	}

	y, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}

	fmt.Println(string(y))

	if meta.UpToDate() {
		fmt.Println("Test data cache is up to date")
	} else {
		fmt.Println("Test data cache needs synchronization")
	}

	return nil
}
