// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/choria-io/fisk"
	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/fixtures"
	"github.com/choria-io/gauntlet/model"
)

type syncCommand struct {
	localData bool
	force     bool
	noop      bool
	report    bool
}

func registerSyncCommand(app *fisk.Application) {
	cmd := &syncCommand{}

	sync := app.Command("sync", "Synchronize the test data cache").Action(cmd.syncAction)
	sync.Flag("use-local-test-data", "Do not download, require a local archive").UnNegatableBoolVar(&cmd.localData)
	sync.Flag("force", "Discard the cached archive and synchronize from scratch").UnNegatableBoolVar(&cmd.force)
	sync.Flag("noop", "Show what would be done without changing anything").UnNegatableBoolVar(&cmd.noop)
	sync.Flag("report", "Generate a report").Default("true").BoolVar(&cmd.report)
}

func (c *syncCommand) syncAction(_ *fisk.ParseContext) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	settings := model.Settings{LocalData: c.localData, StrictCompat: true}

	g, _, err := newHarness(cfg, settings, c.noop)
	if err != nil {
		return err
	}

	properties := cfg.FixtureSet(settings)

	if c.force && !c.noop {
		// with local data the archive is the only copy, a forced sync
		// re-extracts it rather than discarding it
		if !c.localData {
			if err := os.Remove(properties.ArchivePath()); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		if err := os.Remove(filepath.Join(properties.DataDir, fixtures.StateFileName)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	_, err = g.SetupSession(ctx, properties)
	if err != nil {
		return err
	}

	if c.report {
		summary, err := g.SessionSummary()
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Fixture Sync Summary")
		fmt.Println()
		fmt.Printf("        Run Time: %v\n", summary.TotalDuration.Round(time.Millisecond))
		fmt.Printf("     Total Syncs: %d\n", summary.TotalSyncs)
		fmt.Printf("       Downloads: %d\n", summary.Downloads)
		fmt.Printf("    Cached Syncs: %d\n", summary.CachedSyncs)
		fmt.Printf("       Fallbacks: %d\n", summary.Fallbacks)
		fmt.Printf("   Bytes Fetched: %d\n", summary.BytesFetched)
		fmt.Printf("    Total Errors: %d\n", summary.TotalErrors)
	}

	return nil
}
