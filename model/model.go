// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Harness is the surface the fixture synchronizer and gate evaluator use to
// interact with the wider test harness
type Harness interface {
	Facts(ctx context.Context) (map[string]any, error)
	Settings() Settings
	NoopMode() bool
	Logger(args ...any) (Logger, error)
	UserLogger() Logger
	NewRunner() (CommandRunner, error)
	RecordEvent(event SessionEvent) error
	SessionSummary() (*SessionSummary, error)
}

type SessionStore interface {
	StartSession() error
	StopSession(destroy bool) (*SessionSummary, error)
	RecordEvent(SessionEvent) error
	EventsForFixture(name string) ([]SyncEvent, error)
	AllEvents() ([]SessionEvent, error)
}

// Provider is an interface for a fixture source provider
type Provider interface {
	Name() string
}

// ProviderFactory creates fixture source providers, providers are selected
// based on the scheme of the fixture set URL
type ProviderFactory interface {
	Name() string
	Schemes() []string
	New(Logger, CommandRunner) (Provider, error)
}
