// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sort"

	"github.com/choria-io/fisk"
	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/model"
)

type gatesCommand struct {
	id            string
	cpu           bool
	withDownloads bool
	nightly       bool
}

func registerGatesCommand(app *fisk.Application) {
	cmd := &gatesCommand{}

	gates := app.Command("gates", "Evaluates test gates against the current system").Action(cmd.gatesAction)
	gates.Arg("id", "Evaluate only this test identifier").StringVar(&cmd.id)
	gates.Flag("cpu", "Evaluate for a CPU only session").UnNegatableBoolVar(&cmd.cpu)
	gates.Flag("with-downloads", "Activate tests that download models").UnNegatableBoolVar(&cmd.withDownloads)
	gates.Flag("nightly", "Activate nightly tests").UnNegatableBoolVar(&cmd.nightly)
}

func (c *gatesCommand) gatesAction(_ *fisk.ParseContext) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	settings := model.Settings{
		Device:        model.DeviceGPU,
		WithDownloads: c.withDownloads,
		Nightly:       c.nightly,
		StrictCompat:  true,
	}
	if c.cpu {
		settings.Device = model.DeviceCPU
	}

	g, _, err := newHarness(cfg, settings, false)
	if err != nil {
		return err
	}

	if c.id != "" {
		decision, err := g.EvaluateGate(ctx, c.id)
		if err != nil {
			return err
		}

		printDecision(c.id, decision)

		return nil
	}

	plan, err := g.GatePlan(ctx)
	if err != nil {
		return err
	}

	if len(plan) == 0 {
		fmt.Println("No gates are registered")
		return nil
	}

	ids := make([]string, 0, len(plan))
	for id := range plan {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		printDecision(id, plan[id])
	}

	return nil
}

func printDecision(id string, decision model.Decision) {
	if decision.Skip {
		fmt.Printf("SKIP %s: %s\n", id, decision.Reason)
	} else {
		fmt.Printf("RUN  %s\n", id)
	}
}
