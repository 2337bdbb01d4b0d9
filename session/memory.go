// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"

	"github.com/choria-io/gauntlet/model"
)

// MemorySessionStore stores harness events in memory for a session
type MemorySessionStore struct {
	settings model.Settings
	events   []model.SessionEvent
	log      model.Logger
	out      model.Logger
	mu       sync.Mutex
}

// NewMemorySessionStore creates a new in-memory session store with the provided loggers
func NewMemorySessionStore(settings model.Settings, logger model.Logger, writer model.Logger) (*MemorySessionStore, error) {
	logger.Info("Creating new session store")
	return &MemorySessionStore{
		settings: settings,
		out:      writer,
		log:      logger,
		events:   make([]model.SessionEvent, 0),
	}, nil
}

// StartSession clears the event log and starts a new session
func (s *MemorySessionStore) StartSession() error {
	s.mu.Lock()
	s.events = make([]model.SessionEvent, 0)
	s.mu.Unlock()

	s.log.Info("Creating new session record", "device", s.settings.Device, "store", "memory")

	return s.RecordEvent(model.NewSessionStartEvent(s.settings))
}

// RecordEvent adds an event to the session and updates the session metrics
func (s *MemorySessionStore) RecordEvent(event model.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateMetrics(event)

	s.events = append(s.events, event)

	return nil
}

func (s *MemorySessionStore) StopSession(destroy bool) (*model.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := model.BuildSessionSummary(s.events)

	if destroy {
		s.events = make([]model.SessionEvent, 0)
	}

	return summary, nil
}

// EventsForFixture returns all sync events for a given fixture set, the events are in time order with latest event at the end
func (s *MemorySessionStore) EventsForFixture(name string) ([]model.SyncEvent, error) {
	allEvents, err := s.AllEvents()
	if err != nil {
		return nil, err
	}

	return filterSyncEvents(allEvents, name)
}

// AllEvents returns all events in the session in time order
func (s *MemorySessionStore) AllEvents() ([]model.SessionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Return a copy of the events slice to avoid external modifications
	eventsCopy := make([]model.SessionEvent, len(s.events))
	copy(eventsCopy, s.events)

	return eventsCopy, nil
}
