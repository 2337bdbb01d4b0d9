// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/choria-io/gauntlet/fixtures"
	"github.com/choria-io/gauntlet/gates"
	"github.com/choria-io/gauntlet/internal/cmdrunner"
	"github.com/choria-io/gauntlet/internal/facts"
	"github.com/choria-io/gauntlet/model"
	"github.com/choria-io/gauntlet/session"
)

// Gauntlet is the test harness orchestrator, it owns the session store, the
// gate registry and the once per session fixture synchronization
type Gauntlet struct {
	session    model.SessionStore
	log        model.Logger
	userLogger model.Logger
	settings   model.Settings
	gates      *gates.Registry
	extraFacts map[string]any
	facts      map[string]any
	noop       bool

	setupOnce sync.Once
	setupErr  error
	syncEvent *model.SyncEvent

	mu sync.Mutex
}

// NewHarness creates a new Gauntlet instance with the provided loggers
func NewHarness(log model.Logger, userLogger model.Logger, opts ...Option) (*Gauntlet, error) {
	g := &Gauntlet{
		log:        log,
		userLogger: userLogger,
		gates:      gates.NewRegistry(),
		settings:   model.Settings{Device: model.DeviceGPU, StrictCompat: true},
	}

	for _, opt := range opts {
		err := opt(g)
		if err != nil {
			return nil, err
		}
	}

	if g.session == nil {
		sessionLog, err := g.Logger("session", "memory")
		if err != nil {
			return nil, err
		}

		g.session, err = session.NewMemorySessionStore(g.settings, sessionLog, userLogger)
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Settings returns the session settings derived from command line options
func (g *Gauntlet) Settings() model.Settings {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.settings
}

// NoopMode reports if the harness is in noop mode where no changes are made to disk
func (g *Gauntlet) NoopMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.noop
}

// Gates provides access to the gate registry
func (g *Gauntlet) Gates() *gates.Registry {
	return g.gates
}

// SetupSession starts the session and synchronizes the fixture set, it runs
// the synchronization exactly once regardless of how often it is called, an
// error here means the session must abort before any test runs
func (g *Gauntlet) SetupSession(ctx context.Context, properties model.FixtureSetProperties) (*model.SyncEvent, error) {
	g.setupOnce.Do(func() {
		g.setupErr = g.session.StartSession()
		if g.setupErr != nil {
			return
		}

		var sync *fixtures.Synchronizer
		sync, g.setupErr = fixtures.New(ctx, g, properties)
		if g.setupErr != nil {
			return
		}

		g.syncEvent, g.setupErr = sync.Sync(ctx)
		if g.setupErr != nil {
			g.setupErr = fmt.Errorf("%w: %w", model.ErrSessionAborted, g.setupErr)
		}
	})

	return g.syncEvent, g.setupErr
}

// FixtureStatus reports the cache state for a fixture set without changing anything
func (g *Gauntlet) FixtureStatus(ctx context.Context, properties model.FixtureSetProperties) (*model.FixtureMetadata, error) {
	sync, err := fixtures.New(ctx, g, properties)
	if err != nil {
		return nil, err
	}

	return sync.Status(ctx)
}

// EvaluateGate decides if a registered test should run under the current
// settings and records the decision in the session
func (g *Gauntlet) EvaluateGate(ctx context.Context, testID string) (model.Decision, error) {
	cond, err := g.gates.Lookup(testID)
	if err != nil {
		return model.Decision{}, err
	}

	f, err := g.Facts(ctx)
	if err != nil {
		return model.Decision{}, err
	}

	decision, err := gates.Evaluate(cond, g.Settings(), f)
	if err != nil {
		return model.Decision{}, err
	}

	err = g.RecordEvent(model.NewGateEvent(testID, cond, decision))
	if err != nil {
		g.log.Error("Could not record gate event", "test", testID, "error", err)
	}

	return decision, nil
}

// GatePlan evaluates every registered gate and returns the decisions keyed by test identifier
func (g *Gauntlet) GatePlan(ctx context.Context) (map[string]model.Decision, error) {
	plan := make(map[string]model.Decision)

	for _, id := range g.gates.IDs() {
		decision, err := g.EvaluateGate(ctx, id)
		if err != nil {
			return nil, err
		}

		plan[id] = decision
	}

	return plan, nil
}

// Facts gathers and returns the system facts, gathered facts are cached for the session
func (g *Gauntlet) Facts(ctx context.Context) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.facts != nil {
		return g.facts, nil
	}

	to, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	factsLog, err := g.loggerUnlocked("component", "facts")
	if err != nil {
		return nil, err
	}

	f, err := facts.StandardFacts(to, factsLog)
	if err != nil {
		return nil, err
	}

	if g.extraFacts != nil {
		f = mergeFacts(f, g.extraFacts)
	}

	g.facts = f

	return g.facts, nil
}

// Logger creates a new logger with the provided key-value pairs added to the context
func (g *Gauntlet) Logger(args ...any) (model.Logger, error) {
	return g.loggerUnlocked(args...)
}

func (g *Gauntlet) loggerUnlocked(args ...any) (model.Logger, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("invalid logger arguments, must be key value pairs")
	}

	return g.log.With(args...), nil
}

// UserLogger returns the user facing logger
func (g *Gauntlet) UserLogger() model.Logger {
	return g.userLogger
}

// NewRunner creates a new command runner instance
func (g *Gauntlet) NewRunner() (model.CommandRunner, error) {
	log, err := g.Logger("component", "runner")
	if err != nil {
		return nil, err
	}

	return cmdrunner.NewCommandRunner(log)
}

func (g *Gauntlet) RecordEvent(event model.SessionEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return fmt.Errorf("no session store available")
	}

	return g.session.RecordEvent(event)
}

// SessionSummary builds a summary of all events recorded in the session so far
func (g *Gauntlet) SessionSummary() (*model.SessionSummary, error) {
	events, err := g.session.AllEvents()
	if err != nil {
		return nil, err
	}

	return model.BuildSessionSummary(events), nil
}
