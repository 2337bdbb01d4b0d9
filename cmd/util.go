// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"

	"github.com/SladkyCitron/slogcolor"

	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/harness"
	"github.com/choria-io/gauntlet/model"
)

func newHarness(cfg *config.Config, settings model.Settings, noop bool) (*harness.Gauntlet, model.Logger, error) {
	opts := []harness.Option{harness.WithSettings(settings)}

	if cfg.SessionDir != "" {
		opts = append(opts, harness.WithSessionDirectory(cfg.SessionDir))
	}

	if len(cfg.Gates) > 0 {
		opts = append(opts, harness.WithGates(cfg.Gates))
	}

	if noop {
		opts = append(opts, harness.WithNoop())
	}

	logger := newLogger(cfg.LogLevel)
	out := newOutputLogger()

	g, err := harness.NewHarness(logger, out, opts...)
	if err != nil {
		return nil, nil, err
	}

	return g, out, nil
}

func newOutputLogger() model.Logger {
	var level slog.Level

	switch {
	case debug:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	return harness.NewSlogLogger(slog.New(slogcolor.NewHandler(os.Stdout, &slogcolor.Options{Level: level})))
}

func newLogger(configLevel string) model.Logger {
	var level slog.Level

	switch {
	case debug:
		level = slog.LevelDebug
	case info:
		level = slog.LevelInfo
	default:
		switch configLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelWarn
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return harness.NewSlogLogger(logger)
}
