// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/gauntlet/internal/registry"
	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/model"
	"github.com/choria-io/gauntlet/model/modelmocks"
)

func TestFixtures(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fixtures")
}

var _ = Describe("Fixture Synchronizer", func() {
	var (
		facts      = make(map[string]any)
		harness    *modelmocks.MockHarness
		runner     *modelmocks.MockCommandRunner
		mockctl    *gomock.Controller
		provider   *MockFixtureProvider
		factory    *MockFixtureFactory
		dataDir    string
		properties model.FixtureSetProperties
	)

	writeArchive := func(size int) {
		err := os.MkdirAll(dataDir, 0755)
		Expect(err).ToNot(HaveOccurred())
		err = os.WriteFile(properties.ArchivePath(), make([]byte, size), 0644)
		Expect(err).ToNot(HaveOccurred())
	}

	expectExtract := func() *gomock.Call {
		return runner.EXPECT().ExecuteWithOptions(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, opts model.ExtendedExecOptions) ([]byte, []byte, int, error) {
			Expect(opts.Command).To(Equal("tar"))
			Expect(opts.Args).To(Equal([]string{"-xzf", properties.ArchivePath(), "-C", dataDir}))
			return nil, nil, 0, nil
		})
	}

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		harness, _ = modelmocks.NewHarness(facts, model.Settings{Device: model.DeviceGPU}, false, mockctl)
		runner = modelmocks.NewMockCommandRunner(mockctl)
		harness.EXPECT().NewRunner().AnyTimes().Return(runner, nil)

		provider = NewMockFixtureProvider(mockctl)
		provider.EXPECT().Name().Return("mock").AnyTimes()

		factory = NewMockFixtureFactory(mockctl)
		factory.EXPECT().Name().Return("mock").AnyTimes()
		factory.EXPECT().Schemes().Return([]string{"http", "https"}).AnyTimes()
		factory.EXPECT().New(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(func(log model.Logger, runner model.CommandRunner) (model.Provider, error) {
			return provider, nil
		})

		registry.Clear()
		registry.MustRegister(factory)

		dataDir = GinkgoT().TempDir()
		properties = model.FixtureSetProperties{
			Name:        "asr",
			ArchiveName: "test_data.tar.gz",
			Url:         "https://example.net/fixtures/test_data.tar.gz",
			DataDir:     dataDir,
		}
	})

	Describe("New", func() {
		It("Should validate properties", func(ctx context.Context) {
			_, err := New(ctx, harness, model.FixtureSetProperties{Name: "x"})
			Expect(err).To(MatchError(model.ErrFixtureInvalid))

			_, err = New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Sync", func() {
		It("Should skip the download when local and remote sizes match", func(ctx context.Context) {
			writeArchive(10)
			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Downloaded).To(BeFalse())
			Expect(event.Extracted).To(BeFalse())
			Expect(event.LocalSize).To(Equal(int64(10)))
			Expect(event.RemoteSize).To(Equal(int64(10)))
		})

		It("Should download and extract when sizes differ", func(ctx context.Context) {
			writeArchive(5)
			stale := filepath.Join(dataDir, "old_fixture.txt")
			Expect(os.WriteFile(stale, []byte("stale"), 0644)).To(Succeed())

			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)
			provider.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *model.FixtureSetProperties, _ model.Logger) (int64, error) {
				return 10, os.WriteFile(p.ArchivePath(), make([]byte, 10), 0644)
			})
			expectExtract()

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Downloaded).To(BeTrue())
			Expect(event.Extracted).To(BeTrue())
			Expect(event.Bytes).To(Equal(int64(10)))
			Expect(event.LocalSize).To(Equal(int64(10)))

			// the wipe before download must remove stale extracted data
			Expect(iu.FileExists(stale)).To(BeFalse())
			Expect(iu.FileExists(filepath.Join(dataDir, StateFileName))).To(BeTrue())
		})

		It("Should treat a zero byte archive as missing", func(ctx context.Context) {
			writeArchive(0)

			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)
			provider.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *model.FixtureSetProperties, _ model.Logger) (int64, error) {
				return 10, os.WriteFile(p.ArchivePath(), make([]byte, 10), 0644)
			})
			expectExtract()

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Downloaded).To(BeTrue())
		})

		It("Should fall back to cached data when the remote probe fails", func(ctx context.Context) {
			writeArchive(10)
			stale := filepath.Join(dataDir, "old_fixture.txt")
			Expect(os.WriteFile(stale, []byte("stale"), 0644)).To(Succeed())

			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("connection refused"))
			expectExtract()

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Fallback).To(BeTrue())
			Expect(event.Downloaded).To(BeFalse())
			Expect(event.Extracted).To(BeTrue())

			// the fallback re-extraction must not trust prior directory contents
			Expect(iu.FileExists(stale)).To(BeFalse())
			Expect(iu.FileSize(properties.ArchivePath())).To(Equal(int64(10)))
		})

		It("Should fail when the probe fails and no archive is cached", func(ctx context.Context) {
			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("connection refused"))

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).To(MatchError(model.ErrNoUsableArchive))
			Expect(event.Failed).To(BeTrue())
			Expect(event.Error).To(ContainSubstring("connection refused"))
		})

		It("Should not extract again when the state matches the archive", func(ctx context.Context) {
			writeArchive(10)
			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("connection refused"))

			Expect(os.WriteFile(filepath.Join(dataDir, StateFileName), []byte("archive_size: 10\n"), 0644)).To(Succeed())

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			// no runner expectations, extraction must not happen
			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Fallback).To(BeTrue())
			Expect(event.Extracted).To(BeFalse())
		})

		It("Should verify the checksum of downloaded archives", func(ctx context.Context) {
			properties.Checksum = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"

			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)
			provider.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *model.FixtureSetProperties, _ model.Logger) (int64, error) {
				return 10, os.WriteFile(p.ArchivePath(), make([]byte, 10), 0644)
			})

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).To(MatchError(model.ErrChecksumMismatch))
			Expect(event.Failed).To(BeTrue())
		})
	})

	Describe("Sync with local data only", func() {
		BeforeEach(func() {
			properties.LocalOnly = true
			properties.Url = ""
		})

		It("Should fail when the archive is missing", func(ctx context.Context) {
			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).To(MatchError(model.ErrNoLocalArchive))
			Expect(event.Failed).To(BeTrue())
		})

		It("Should extract the local archive without any network access", func(ctx context.Context) {
			writeArchive(10)
			expectExtract()

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Provider).To(Equal("local"))
			Expect(event.Downloaded).To(BeFalse())
			Expect(event.Extracted).To(BeTrue())
		})

		It("Should fail on checksum mismatch", func(ctx context.Context) {
			writeArchive(10)
			properties.Checksum = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			_, err = sync.Sync(ctx)
			Expect(err).To(MatchError(model.ErrChecksumMismatch))
		})

		It("Should wipe stale data while keeping the operator supplied archive", func(ctx context.Context) {
			writeArchive(10)
			stale := filepath.Join(dataDir, "old_fixture.txt")
			Expect(os.WriteFile(stale, []byte("stale"), 0644)).To(Succeed())
			expectExtract()

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Extracted).To(BeTrue())

			Expect(iu.FileExists(stale)).To(BeFalse())
			Expect(iu.FileSize(properties.ArchivePath())).To(Equal(int64(10)))
		})
	})

	Describe("Sync in noop mode", func() {
		var noopHarness *modelmocks.MockHarness

		BeforeEach(func() {
			noopHarness, _ = modelmocks.NewHarness(facts, model.Settings{Device: model.DeviceGPU}, true, mockctl)
			noopHarness.EXPECT().NewRunner().AnyTimes().Return(runner, nil)
		})

		It("Should not download when sizes differ", func(ctx context.Context) {
			writeArchive(5)
			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)
			// no Download or extract calls expected

			sync, err := New(ctx, noopHarness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Downloaded).To(BeFalse())
			Expect(event.Extracted).To(BeFalse())
		})

		It("Should not extract local archives", func(ctx context.Context) {
			properties.LocalOnly = true
			properties.Url = ""
			writeArchive(10)

			sync, err := New(ctx, noopHarness, properties)
			Expect(err).ToNot(HaveOccurred())

			event, err := sync.Sync(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(event.Extracted).To(BeFalse())
		})
	})

	Describe("Status", func() {
		It("Should report the cache state", func(ctx context.Context) {
			writeArchive(10)
			Expect(os.WriteFile(filepath.Join(dataDir, StateFileName), []byte("archive_size: 10\n"), 0644)).To(Succeed())

			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil)

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			meta, err := sync.Status(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(meta.ArchiveExists).To(BeTrue())
			Expect(meta.DataDirExists).To(BeTrue())
			Expect(meta.LocalSize).To(Equal(int64(10)))
			Expect(meta.RemoteSize).To(Equal(int64(10)))
			Expect(meta.ExtractedSize).To(Equal(int64(10)))
			Expect(meta.Provider).To(Equal("mock"))
			Expect(meta.UpToDate()).To(BeTrue())
		})

		It("Should report unknown sizes when nothing is cached", func(ctx context.Context) {
			provider.EXPECT().RemoteSize(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("connection refused"))

			sync, err := New(ctx, harness, properties)
			Expect(err).ToNot(HaveOccurred())

			meta, err := sync.Status(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(meta.ArchiveExists).To(BeFalse())
			Expect(meta.LocalSize).To(Equal(model.SizeUnknown))
			Expect(meta.RemoteSize).To(Equal(model.SizeUnknown))
			Expect(meta.UpToDate()).To(BeFalse())
		})
	})
})

var _ = Describe("ExtractArchive", func() {
	var (
		mockctl *gomock.Controller
		runner  *modelmocks.MockCommandRunner
		logger  *modelmocks.MockLogger
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		runner = modelmocks.NewMockCommandRunner(mockctl)
		logger = modelmocks.NewMockLogger(mockctl)
		logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	})

	DescribeTable("tool selection",
		func(archive string, command string, args []string) {
			dest := GinkgoT().TempDir()
			runner.EXPECT().ExecuteWithOptions(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, opts model.ExtendedExecOptions) ([]byte, []byte, int, error) {
				Expect(opts.Command).To(Equal(command))
				Expect(opts.Args[0]).To(Equal(args[0]))
				Expect(opts.Cwd).To(Equal(dest))
				return nil, nil, 0, nil
			})

			Expect(ExtractArchive(context.Background(), runner, archive, dest, logger)).To(Succeed())
		},
		Entry("tar.gz", "/tmp/x.tar.gz", "tar", []string{"-xzf"}),
		Entry("tgz", "/tmp/x.tgz", "tar", []string{"-xzf"}),
		Entry("tar", "/tmp/x.tar", "tar", []string{"-xf"}),
		Entry("zip", "/tmp/x.zip", "unzip", []string{"-o"}),
	)

	It("Should fail for unsupported archive types", func(ctx context.Context) {
		err := ExtractArchive(ctx, runner, "/tmp/x.rar", GinkgoT().TempDir(), logger)
		Expect(err).To(MatchError(ContainSubstring("archive type not supported")))
	})

	It("Should fail when the tool exits non zero", func(ctx context.Context) {
		runner.EXPECT().ExecuteWithOptions(gomock.Any(), gomock.Any()).Return(nil, []byte("unexpected EOF"), 2, nil)

		err := ExtractArchive(ctx, runner, "/tmp/x.tar.gz", GinkgoT().TempDir(), logger)
		Expect(err).To(MatchError(ContainSubstring("unexpected EOF")))
	})
})
