// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Session Events", func() {
	Describe("NewSyncEvent", func() {
		It("Should default to unknown sizes", func() {
			event := NewSyncEvent("asr")
			Expect(event.Protocol).To(Equal(SyncEventProtocol))
			Expect(event.EventID).ToNot(BeEmpty())
			Expect(event.LocalSize).To(Equal(SizeUnknown))
			Expect(event.RemoteSize).To(Equal(SizeUnknown))
		})
	})

	Describe("String", func() {
		It("Should describe the sync outcome", func() {
			event := NewSyncEvent("asr")
			Expect(event.String()).To(ContainSubstring("cached"))

			event.Downloaded = true
			event.Bytes = 100
			Expect(event.String()).To(ContainSubstring("downloaded bytes=100"))

			event.Downloaded = false
			event.Fallback = true
			Expect(event.String()).To(ContainSubstring("fallback"))

			event.Failed = true
			event.Error = "remote gone"
			Expect(event.String()).To(ContainSubstring("remote gone"))
		})

		It("Should describe gate decisions", func() {
			event := NewGateEvent("asr.test_tts", Conditions{Nightly: true}, Decision{Skip: true, Reason: "nightly only"})
			Expect(event.String()).To(ContainSubstring(`skipped reason="nightly only"`))

			event = NewGateEvent("asr.test_stt", Conditions{}, Decision{})
			Expect(event.String()).To(ContainSubstring("selected"))
		})
	})

	Describe("BuildSessionSummary", func() {
		It("Should count events by outcome", func() {
			start := NewSessionStartEvent(Settings{Device: DeviceGPU})

			download := NewSyncEvent("asr")
			download.Downloaded = true
			download.Bytes = 100
			download.Duration = time.Second

			cached := NewSyncEvent("nlp")
			cached.Duration = time.Second

			fallback := NewSyncEvent("tts")
			fallback.Fallback = true

			failed := NewSyncEvent("cv")
			failed.Failed = true
			failed.Error = "remote gone"

			skip := NewGateEvent("asr.test_tts", Conditions{Nightly: true}, Decision{Skip: true})
			run := NewGateEvent("asr.test_stt", Conditions{}, Decision{})

			summary := BuildSessionSummary([]SessionEvent{start, download, cached, fallback, failed, skip, run})
			Expect(summary.StartTime).To(Equal(start.TimeStamp))
			Expect(summary.TotalSyncs).To(Equal(4))
			Expect(summary.Downloads).To(Equal(1))
			Expect(summary.CachedSyncs).To(Equal(1))
			Expect(summary.Fallbacks).To(Equal(1))
			Expect(summary.TotalErrors).To(Equal(1))
			Expect(summary.BytesFetched).To(Equal(int64(100)))
			Expect(summary.GatedTests).To(Equal(2))
			Expect(summary.SkippedTests).To(Equal(1))
			Expect(summary.TotalDuration).To(Equal(2 * time.Second))
		})

		It("Should handle empty sessions", func() {
			summary := BuildSessionSummary(nil)
			Expect(summary.TotalSyncs).To(BeZero())
			Expect(summary.TotalDuration).To(BeZero())
		})
	})
})
