// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/choria-io/gauntlet/metrics"
	"github.com/choria-io/gauntlet/model"
)

func updateMetrics(event model.SessionEvent) {
	switch e := event.(type) {
	case *model.GateEvent:
		if e.Decision.Skip {
			metrics.GateEvaluationCount.WithLabelValues("skip").Inc()
			metrics.GateSkipCount.WithLabelValues(gateKind(e)).Inc()
		} else {
			metrics.GateEvaluationCount.WithLabelValues("run").Inc()
		}
	}
}

// gateKind names the condition most likely responsible for a skip, used only
// as a metric label
func gateKind(e *model.GateEvent) string {
	switch {
	case e.Conditions.Device != "":
		return "device"
	case e.Conditions.RequiresDownloads:
		return "downloads"
	case e.Conditions.Nightly:
		return "nightly"
	case e.Conditions.Expression != "":
		return "expression"
	default:
		return "none"
	}
}

func filterSyncEvents(allEvents []model.SessionEvent, name string) ([]model.SyncEvent, error) {
	var filtered []model.SyncEvent
	for _, event := range allEvents {
		syncEvent, ok := event.(*model.SyncEvent)
		if !ok {
			continue
		}

		if syncEvent.Name == name {
			filtered = append(filtered, *syncEvent)
		}
	}

	return filtered, nil
}
