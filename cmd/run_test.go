// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/gauntlet/config"
	"github.com/choria-io/gauntlet/model"
)

func TestCommands(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Commands")
}

var _ = Describe("childExitCode", func() {
	DescribeTable("exit code propagation",
		func(child int, expected int) {
			Expect(childExitCode(child)).To(Equal(expected))
		},
		Entry("plain failure", 1, 1),
		Entry("pytest usage error", 4, 4),
		Entry("signal style code", 137, 137),
		Entry("failure to start", -1, 1),
		Entry("out of range", 300, 1),
	)
})

var _ = Describe("sessionEnvironment", func() {
	It("Should expose the session to the test command", func() {
		cfg, err := config.ParseConfig([]byte(`
name: asr
url: https://example.net/test_data.tar.gz
data_dir: /srv/fixtures
`))
		Expect(err).ToNot(HaveOccurred())

		settings := model.Settings{Device: model.DeviceCPU, WithDownloads: true, StrictCompat: false}
		plan := map[string]model.Decision{
			"asr.test_tts": {Skip: true, Reason: "nightly"},
			"asr.test_stt": {},
			"asr.test_aed": {Skip: true, Reason: "device"},
		}

		cmd := &runCommand{}
		env := cmd.sessionEnvironment(cfg, settings, plan)
		Expect(env).To(ContainElement("GAUNTLET_DEVICE=CPU"))
		Expect(env).To(ContainElement("GAUNTLET_DATA_DIR=/srv/fixtures"))
		Expect(env).To(ContainElement("GAUNTLET_SKIP=asr.test_aed,asr.test_tts"))
		Expect(env).To(ContainElement("GAUNTLET_WITH_DOWNLOADS=1"))
		Expect(env).To(ContainElement("GAUNTLET_RELAX_COMPAT=1"))
		Expect(env).ToNot(ContainElement("GAUNTLET_NIGHTLY=1"))
	})
})
