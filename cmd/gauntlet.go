// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/choria-io/fisk"
)

var (
	ctx        context.Context
	debug      bool
	info       bool
	configFile string
	Version    = "development"
)

func main() {
	app := fisk.New("gauntlet", "Choria Test Harness Companion")
	app.Version(Version)
	app.Author("https://choria.io")

	app.Flag("debug", "Enable debug logging").UnNegatableBoolVar(&debug)
	app.Flag("info", "Enable info logging").UnNegatableBoolVar(&info)
	app.Flag("config", "Path to the harness configuration").Envar("GAUNTLET_CONFIG").Default("gauntlet.yaml").StringVar(&configFile)

	registerSyncCommand(app)
	registerStatusCommand(app)
	registerGatesCommand(app)
	registerRunCommand(app)

	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	app.MustParseWithUsage(os.Args[1:])
}
