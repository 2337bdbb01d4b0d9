// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/choria-io/fisk"
	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/metrics"
	"github.com/choria-io/gauntlet/model"
	"github.com/kballard/go-shellquote"
	"github.com/prometheus/client_golang/prometheus"
)

type runCommand struct {
	cpu           bool
	withDownloads bool
	nightly       bool
	relaxCompat   bool
	localData     bool
	report        bool
	command       []string
}

func registerRunCommand(app *fisk.Application) {
	cmd := &runCommand{}

	run := app.Command("run", "Synchronize fixtures, evaluate gates and run the test command").Action(cmd.runAction)
	run.Flag("cpu", "Run a CPU only session").UnNegatableBoolVar(&cmd.cpu)
	run.Flag("with-downloads", "Activate tests that download models").UnNegatableBoolVar(&cmd.withDownloads)
	run.Flag("nightly", "Activate nightly tests").UnNegatableBoolVar(&cmd.nightly)
	run.Flag("relax-numba-compat", "Relax strict accelerator compatibility checks").UnNegatableBoolVar(&cmd.relaxCompat)
	run.Flag("use-local-test-data", "Do not download, require a local archive").UnNegatableBoolVar(&cmd.localData)
	run.Flag("report", "Generate a report").Default("true").BoolVar(&cmd.report)
	run.Arg("command", "Test command to run, defaults to the configured test command").StringsVar(&cmd.command)
}

func (c *runCommand) runAction(_ *fisk.ParseContext) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	command := c.command
	if len(command) == 0 {
		if cfg.TestCommand == "" {
			return fmt.Errorf("no test command given and none configured")
		}

		command, err = shellquote.Split(cfg.TestCommand)
		if err != nil {
			return fmt.Errorf("invalid test command: %w", err)
		}
	}

	settings := model.Settings{
		Device:        model.DeviceGPU,
		WithDownloads: c.withDownloads,
		Nightly:       c.nightly,
		StrictCompat:  !c.relaxCompat,
		LocalData:     c.localData,
	}
	if c.cpu {
		settings.Device = model.DeviceCPU
	}

	g, out, err := newHarness(cfg, settings, false)
	if err != nil {
		return err
	}

	if cfg.MonitorPort > 0 {
		metrics.RegisterMetrics()
		metrics.ListenAndServe(cfg.MonitorPort, out)
	}

	_, err = g.SetupSession(ctx, cfg.FixtureSet(settings))
	if err != nil {
		if errors.Is(err, model.ErrSessionAborted) {
			metrics.SessionAbortCount.WithLabelValues().Inc()
		}

		return err
	}

	plan, err := g.GatePlan(ctx)
	if err != nil {
		return err
	}

	runner, err := g.NewRunner()
	if err != nil {
		return err
	}

	obs := prometheus.NewTimer(metrics.TestRunTime.WithLabelValues(command[0]))
	_, _, code, err := runner.ExecuteWithOptions(ctx, model.ExtendedExecOptions{
		Command:            command[0],
		Args:               command[1:],
		Environment:        c.sessionEnvironment(cfg, settings, plan),
		InheritEnvironment: true,
		Interactive:        true,
	})
	obs.ObserveDuration()
	if err != nil {
		return err
	}

	if c.report {
		summary, err := g.SessionSummary()
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Test Session Summary")
		fmt.Println()
		fmt.Printf("        Run Time: %v\n", summary.TotalDuration.Round(time.Millisecond))
		fmt.Printf("       Downloads: %d\n", summary.Downloads)
		fmt.Printf("    Cached Syncs: %d\n", summary.CachedSyncs)
		fmt.Printf("       Fallbacks: %d\n", summary.Fallbacks)
		fmt.Printf("     Gated Tests: %d\n", summary.GatedTests)
		fmt.Printf("   Skipped Tests: %d\n", summary.SkippedTests)
		fmt.Printf("    Total Errors: %d\n", summary.TotalErrors)
	}

	if code != 0 {
		fmt.Fprintf(os.Stderr, "gauntlet: test command failed with exit code %d\n", code)
		os.Exit(childExitCode(code))
	}

	return nil
}

// childExitCode maps the test command exit code onto our own exit code, codes
// outside the valid range such as a failure to start become a plain failure
func childExitCode(code int) int {
	if code < 1 || code > 255 {
		return 1
	}

	return code
}

// sessionEnvironment builds the environment the gated test command sees,
// skipped test identifiers are passed so test runners can exclude them
func (c *runCommand) sessionEnvironment(cfg *config.Config, settings model.Settings, plan map[string]model.Decision) []string {
	var skipped []string
	for id, decision := range plan {
		if decision.Skip {
			skipped = append(skipped, id)
		}
	}
	sort.Strings(skipped)

	env := []string{
		fmt.Sprintf("GAUNTLET_DEVICE=%s", settings.Device),
		fmt.Sprintf("GAUNTLET_DATA_DIR=%s", cfg.DataDir),
		fmt.Sprintf("GAUNTLET_SKIP=%s", strings.Join(skipped, ",")),
	}

	if settings.WithDownloads {
		env = append(env, "GAUNTLET_WITH_DOWNLOADS=1")
	}
	if settings.Nightly {
		env = append(env, "GAUNTLET_NIGHTLY=1")
	}
	if !settings.StrictCompat {
		env = append(env, "GAUNTLET_RELAX_COMPAT=1")
	}

	return env
}
