// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package cmdrunner

import (
	"context"
	"runtime"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/gauntlet/model"
	"github.com/choria-io/gauntlet/model/modelmocks"
)

func TestCmdRunner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal/CmdRunner")
}

var _ = Describe("CommandRunner", func() {
	var (
		mockctl *gomock.Controller
		logger  *modelmocks.MockLogger
		runner  *CommandRunner
	)

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("not supported on windows")
		}

		mockctl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewMockLogger(mockctl)
		logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

		var err error
		runner, err = NewCommandRunner(logger)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Execute", func() {
		It("Should capture stdout and stderr", func(ctx context.Context) {
			stdout, stderr, code, err := runner.Execute(ctx, "sh", "-c", "echo out; echo err >&2")
			Expect(err).ToNot(HaveOccurred())
			Expect(code).To(Equal(0))
			Expect(string(stdout)).To(Equal("out\n"))
			Expect(string(stderr)).To(Equal("err\n"))
		})

		It("Should return non zero exit codes without an error", func(ctx context.Context) {
			_, _, code, err := runner.Execute(ctx, "sh", "-c", "exit 3")
			Expect(err).ToNot(HaveOccurred())
			Expect(code).To(Equal(3))
		})

		It("Should fail for missing commands", func(ctx context.Context) {
			_, _, _, err := runner.Execute(ctx, "definitely-not-a-command")
			Expect(err).To(HaveOccurred())
		})

		It("Should require a command", func(ctx context.Context) {
			_, _, _, err := runner.Execute(ctx, "")
			Expect(err).To(MatchError(ContainSubstring("command not specified")))
		})
	})

	Describe("ExecuteWithOptions", func() {
		It("Should run in the requested directory", func(ctx context.Context) {
			dir := GinkgoT().TempDir()

			stdout, _, code, err := runner.ExecuteWithOptions(ctx, model.ExtendedExecOptions{Command: "pwd", Cwd: dir})
			Expect(err).ToNot(HaveOccurred())
			Expect(code).To(Equal(0))
			Expect(string(stdout)).To(ContainSubstring(dir))
		})

		It("Should pass extra environment variables", func(ctx context.Context) {
			stdout, _, _, err := runner.ExecuteWithOptions(ctx, model.ExtendedExecOptions{
				Command:     "sh",
				Args:        []string{"-c", "echo $GAUNTLET_DEVICE"},
				Environment: []string{"GAUNTLET_DEVICE=CPU"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(string(stdout)).To(Equal("CPU\n"))
		})

		It("Should enforce the timeout", func(ctx context.Context) {
			start := time.Now()
			_, _, _, err := runner.ExecuteWithOptions(ctx, model.ExtendedExecOptions{
				Command: "sleep",
				Args:    []string{"10"},
				Timeout: 100 * time.Millisecond,
			})
			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
		})
	})
})
