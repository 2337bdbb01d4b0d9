// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

const SyncStartEventProtocol = "io.choria.gauntlet.v1.session.start"
const GateEventProtocol = "io.choria.gauntlet.v1.gate.event"

type SessionEvent interface {
	SessionEventID() string
	String() string
}

// SessionStartEvent marks the start of a harness session
type SessionStartEvent struct {
	Protocol  string    `json:"protocol" yaml:"protocol"`
	EventID   string    `json:"event_id" yaml:"event_id"`
	TimeStamp time.Time `json:"timestamp" yaml:"timestamp"`
	Settings  Settings  `json:"settings" yaml:"settings"`
}

func NewSessionStartEvent(settings Settings) *SessionStartEvent {
	return &SessionStartEvent{
		Protocol:  SyncStartEventProtocol,
		EventID:   ksuid.New().String(),
		TimeStamp: time.Now().UTC(),
		Settings:  settings,
	}
}

func (e *SessionStartEvent) SessionEventID() string { return e.EventID }
func (e *SessionStartEvent) String() string {
	return fmt.Sprintf("session %s started %s device=%s", e.EventID, e.TimeStamp.Format(time.RFC3339), e.Settings.Device)
}

// SyncEvent represents one synchronization of a fixture set
type SyncEvent struct {
	Protocol   string        `json:"protocol" yaml:"protocol"`
	EventID    string        `json:"event_id" yaml:"event_id"`
	TimeStamp  time.Time     `json:"timestamp" yaml:"timestamp"`
	Name       string        `json:"name" yaml:"name"`
	Provider   string        `json:"provider" yaml:"provider"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	LocalSize  int64         `json:"local_size" yaml:"local_size"`
	RemoteSize int64         `json:"remote_size" yaml:"remote_size"`
	Bytes      int64         `json:"bytes" yaml:"bytes"`

	Downloaded bool   `json:"downloaded" yaml:"downloaded"`
	Extracted  bool   `json:"extracted" yaml:"extracted"`
	Fallback   bool   `json:"fallback" yaml:"fallback"` // Fallback indicates the remote probe failed and a cached local archive was used
	Failed     bool   `json:"failed" yaml:"failed"`
	Error      string `json:"error" yaml:"error"`
}

func NewSyncEvent(name string) *SyncEvent {
	return &SyncEvent{
		Protocol:   SyncEventProtocol,
		EventID:    ksuid.New().String(),
		TimeStamp:  time.Now().UTC(),
		Name:       name,
		LocalSize:  SizeUnknown,
		RemoteSize: SizeUnknown,
	}
}

func (e *SyncEvent) SessionEventID() string { return e.EventID }

func (e *SyncEvent) String() string {
	switch {
	case e.Failed:
		return fmt.Sprintf("%s#%s failed runtime=%v error=%v provider=%s", FixtureTypeName, e.Name, e.Duration, e.Error, e.Provider)
	case e.Downloaded:
		return fmt.Sprintf("%s#%s downloaded bytes=%d runtime=%v provider=%s", FixtureTypeName, e.Name, e.Bytes, e.Duration, e.Provider)
	case e.Fallback:
		return fmt.Sprintf("%s#%s fallback local=%d runtime=%v provider=%s", FixtureTypeName, e.Name, e.LocalSize, e.Duration, e.Provider)
	default:
		return fmt.Sprintf("%s#%s cached local=%d runtime=%v provider=%s", FixtureTypeName, e.Name, e.LocalSize, e.Duration, e.Provider)
	}
}

// LogStatus logs the sync outcome to the user facing logger
func (e *SyncEvent) LogStatus(log Logger) {
	args := []any{
		"runtime", e.Duration.Truncate(time.Millisecond),
		"provider", e.Provider,
	}

	switch {
	case e.Failed:
		log.Error(fmt.Sprintf("%s#%s failed", FixtureTypeName, e.Name), append(args, "error", e.Error)...)
	case e.Fallback:
		log.Warn(fmt.Sprintf("%s#%s used cached data, remote unavailable", FixtureTypeName, e.Name), args...)
	case e.Downloaded:
		log.Warn(fmt.Sprintf("%s#%s downloaded", FixtureTypeName, e.Name), append(args, "bytes", e.Bytes)...)
	default:
		log.Info(fmt.Sprintf("%s#%s cached", FixtureTypeName, e.Name), args...)
	}
}

// GateEvent records the gate decision made for one test identifier
type GateEvent struct {
	Protocol   string     `json:"protocol" yaml:"protocol"`
	EventID    string     `json:"event_id" yaml:"event_id"`
	TimeStamp  time.Time  `json:"timestamp" yaml:"timestamp"`
	TestID     string     `json:"test_id" yaml:"test_id"`
	Conditions Conditions `json:"conditions" yaml:"conditions"`
	Decision   Decision   `json:"decision" yaml:"decision"`
}

func NewGateEvent(testID string, cond Conditions, decision Decision) *GateEvent {
	return &GateEvent{
		Protocol:   GateEventProtocol,
		EventID:    ksuid.New().String(),
		TimeStamp:  time.Now().UTC(),
		TestID:     testID,
		Conditions: cond,
		Decision:   decision,
	}
}

func (e *GateEvent) SessionEventID() string { return e.EventID }

func (e *GateEvent) String() string {
	if e.Decision.Skip {
		return fmt.Sprintf("gate#%s skipped reason=%q", e.TestID, e.Decision.Reason)
	}

	return fmt.Sprintf("gate#%s selected", e.TestID)
}

// SessionSummary provides a statistical summary of a harness session
type SessionSummary struct {
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
	TotalSyncs    int           `json:"total_syncs" yaml:"total_syncs"`
	Downloads     int           `json:"downloads" yaml:"downloads"`
	CachedSyncs   int           `json:"cached_syncs" yaml:"cached_syncs"`
	Fallbacks     int           `json:"fallbacks" yaml:"fallbacks"`
	BytesFetched  int64         `json:"bytes_fetched" yaml:"bytes_fetched"`
	GatedTests    int           `json:"gated_tests" yaml:"gated_tests"`
	SkippedTests  int           `json:"skipped_tests" yaml:"skipped_tests"`
	TotalErrors   int           `json:"total_errors" yaml:"total_errors"`
}

// BuildSessionSummary creates a summary report from all events in a session
func BuildSessionSummary(events []SessionEvent) *SessionSummary {
	summary := &SessionSummary{}
	var totalTime time.Duration

	for _, event := range events {
		switch e := event.(type) {
		case *SessionStartEvent:
			summary.StartTime = e.TimeStamp

		case *SyncEvent:
			totalTime += e.Duration
			summary.TotalSyncs++
			summary.BytesFetched += e.Bytes

			if e.TimeStamp.After(summary.EndTime) {
				summary.EndTime = e.TimeStamp
			}

			switch {
			case e.Failed:
				summary.TotalErrors++
			case e.Downloaded:
				summary.Downloads++
			case e.Fallback:
				summary.Fallbacks++
			default:
				summary.CachedSyncs++
			}

		case *GateEvent:
			summary.GatedTests++
			if e.Decision.Skip {
				summary.SkippedTests++
			}

			if e.TimeStamp.After(summary.EndTime) {
				summary.EndTime = e.TimeStamp
			}
		}
	}

	summary.TotalDuration = totalTime
	if summary.TotalDuration == 0 && !summary.StartTime.IsZero() && !summary.EndTime.IsZero() {
		summary.TotalDuration = summary.EndTime.Sub(summary.StartTime)
	}

	return summary
}
