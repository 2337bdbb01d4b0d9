// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/choria-io/gauntlet/model"
)

var (
	NameSpace = "choria"
	Subsystem = "gauntlet"

	// SyncTime is a summary of the time taken to synchronize a fixture set
	SyncTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "sync_duration_seconds"),
		Help: "Time taken to synchronize a fixture set",
	}, []string{"name", "provider"})

	// DownloadCount counts archive downloads per fixture set
	DownloadCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "download_count"),
		Help: "How many times a fixture archive was downloaded",
	}, []string{"name", "provider"})

	// DownloadBytes counts bytes fetched for fixture archives
	DownloadBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "download_bytes"),
		Help: "How many bytes were fetched for fixture archives",
	}, []string{"name", "provider"})

	// SyncCachedCount counts synchronizations satisfied by the local cache
	SyncCachedCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "sync_cached_count"),
		Help: "How many synchronizations were satisfied by the local cache",
	}, []string{"name"})

	// SyncFallbackCount counts synchronizations that fell back to cached data after a remote failure
	SyncFallbackCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "sync_fallback_count"),
		Help: "How many synchronizations fell back to cached data after a remote failure",
	}, []string{"name"})

	// SyncErrorCount counts failed synchronizations
	SyncErrorCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "sync_error_count"),
		Help: "How many synchronizations failed",
	}, []string{"name"})

	// SessionAbortCount counts sessions aborted before any test ran
	SessionAbortCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "session_abort_count"),
		Help: "How many sessions were aborted before any test ran",
	}, []string{})

	// GateEvaluationCount counts gate evaluations by outcome
	GateEvaluationCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "gate_evaluation_count"),
		Help: "How many gate evaluations were made",
	}, []string{"outcome"})

	// GateSkipCount counts skipped tests by gate kind
	GateSkipCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "gate_skip_count"),
		Help: "How many tests were skipped by a gate",
	}, []string{"gate"})

	// FactGatherTime is a summary of the time taken to gather facts
	FactGatherTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "facts_gather_duration_seconds"),
		Help: "Time taken to gather facts",
	}, []string{})

	// TestRunTime is a summary of the time taken to run the gated test command
	TestRunTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "test_run_duration_seconds"),
		Help: "Time taken to run the gated test command",
	}, []string{"command"})
)

func RegisterMetrics() {
	prometheus.MustRegister(SyncTime)
	prometheus.MustRegister(DownloadCount)
	prometheus.MustRegister(DownloadBytes)
	prometheus.MustRegister(SyncCachedCount)
	prometheus.MustRegister(SyncFallbackCount)
	prometheus.MustRegister(SyncErrorCount)
	prometheus.MustRegister(SessionAbortCount)
	prometheus.MustRegister(GateEvaluationCount)
	prometheus.MustRegister(GateSkipCount)
	prometheus.MustRegister(FactGatherTime)
	prometheus.MustRegister(TestRunTime)
}

func ListenAndServe(port int, log model.Logger) {
	if port <= 0 {
		return
	}

	go func() {
		log.Info("Starting monitoring server", "port", port)
		http.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
		if err != nil {
			log.Error("HTTP Listener failed", "error", err)
		}
	}()
}
