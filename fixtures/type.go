// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package fixtures

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/gauntlet/internal/registry"
	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/metrics"
	"github.com/choria-io/gauntlet/model"
)

// StateFileName is the marker file recording what was last extracted into a data directory
const StateFileName = ".gauntlet_state.yaml"

// Synchronizer ensures a data directory contains extracted fixtures matching
// either a remote or a user supplied local archive
type Synchronizer struct {
	prop     *model.FixtureSetProperties
	harness  model.Harness
	log      model.Logger
	userLog  model.Logger
	provider model.Provider

	mu sync.Mutex
}

// state is persisted in the data directory after each extraction so
// unchanged archives are not extracted again on later runs
type state struct {
	ArchiveSize int64     `yaml:"archive_size"`
	Checksum    string    `yaml:"checksum,omitempty"`
	Extracted   time.Time `yaml:"extracted"`
}

func New(ctx context.Context, harness model.Harness, properties model.FixtureSetProperties) (*Synchronizer, error) {
	loggerArgs := []any{"type", model.FixtureTypeName, "name", properties.Name}
	logger, err := harness.Logger(loggerArgs...)
	if err != nil {
		return nil, err
	}

	s := &Synchronizer{
		prop:    &properties,
		harness: harness,
		log:     logger,
		userLog: harness.UserLogger().With(loggerArgs...),
	}

	err = properties.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", properties.Name, model.ErrFixtureInvalid, err)
	}

	s.log.Debug("Created synchronizer instance")

	return s, nil
}

// Sync performs one synchronization pass and records the outcome with the
// harness, errors returned here are session fatal
func (s *Synchronizer) Sync(ctx context.Context) (*model.SyncEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := model.NewSyncEvent(s.prop.Name)
	obs := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		metrics.SyncTime.WithLabelValues(s.prop.Name, event.Provider).Observe(v)
	}))

	err := s.sync(ctx, event)

	event.Duration = obs.ObserveDuration()
	if err != nil {
		event.Failed = true
		event.Error = err.Error()
	}

	if rerr := s.harness.RecordEvent(event); rerr != nil {
		s.log.Error("Could not record sync event", "error", rerr)
	}

	event.LogStatus(s.userLog)

	if err != nil {
		return event, err
	}

	return event, nil
}

func (s *Synchronizer) sync(ctx context.Context, event *model.SyncEvent) error {
	var (
		properties = s.prop
		archive    = properties.ArchivePath()
		noop       = s.harness.NoopMode()
	)

	localSize := iu.FileSize(archive)
	if localSize == 0 {
		// a zero byte archive can never extract to anything useful
		s.log.Warn("Ignoring empty local archive", "archive", archive)
		localSize = model.SizeUnknown
	}
	event.LocalSize = localSize

	if properties.LocalOnly {
		return s.syncLocalOnly(ctx, event, localSize, noop)
	}

	err := s.selectProviderUnlocked()
	if err != nil {
		return err
	}

	provider := s.provider.(FixtureProvider)
	event.Provider = provider.Name()

	remoteSize, err := provider.RemoteSize(ctx, properties, s.log)
	if err != nil {
		if localSize == model.SizeUnknown {
			metrics.SyncErrorCount.WithLabelValues(properties.Name).Inc()
			return fmt.Errorf("%w: %s unavailable: %w", model.ErrNoUsableArchive, properties.Url, err)
		}

		s.log.Warn("Could not determine remote archive size, using cached local data", "url", properties.Url, "local_size", localSize, "error", err)

		err = s.verifyLocalArchive(archive)
		if err != nil {
			metrics.SyncErrorCount.WithLabelValues(properties.Name).Inc()
			return fmt.Errorf("%w: %w", model.ErrNoUsableArchive, err)
		}

		event.Fallback = true
		metrics.SyncFallbackCount.WithLabelValues(properties.Name).Inc()

		if noop {
			s.log.Info("Skipping extraction as noop")
			return nil
		}

		if s.alreadyExtracted(localSize) {
			s.log.Debug("Archive already extracted, skipping", "size", localSize)
			return nil
		}

		err = s.prepareDataDirPreserving(archive)
		if err != nil {
			return err
		}

		return s.extractLocked(ctx, event, archive)
	}

	event.RemoteSize = remoteSize

	if remoteSize == localSize {
		s.log.Info("Cached archive matches remote size, skipping download", "size", localSize)
		metrics.SyncCachedCount.WithLabelValues(properties.Name).Inc()
		return nil
	}

	s.log.Info("Remote archive differs from cache", "remote_size", remoteSize, "local_size", localSize)

	if noop {
		s.log.Info("Skipping download as noop")
		return nil
	}

	err = s.prepareDataDir()
	if err != nil {
		return err
	}

	copied, err := provider.Download(ctx, properties, s.log)
	if err != nil {
		metrics.SyncErrorCount.WithLabelValues(properties.Name).Inc()
		return fmt.Errorf("download failed: %w", err)
	}

	event.Downloaded = true
	event.Bytes = copied
	event.LocalSize = iu.FileSize(archive)
	metrics.DownloadCount.WithLabelValues(properties.Name, event.Provider).Inc()
	metrics.DownloadBytes.WithLabelValues(properties.Name, event.Provider).Add(float64(copied))

	err = s.verifyLocalArchive(archive)
	if err != nil {
		metrics.SyncErrorCount.WithLabelValues(properties.Name).Inc()
		return err
	}

	return s.extractLocked(ctx, event, archive)
}

// syncLocalOnly handles the operator supplied archive path, no network access happens here
func (s *Synchronizer) syncLocalOnly(ctx context.Context, event *model.SyncEvent, localSize int64, noop bool) error {
	archive := s.prop.ArchivePath()

	if localSize == model.SizeUnknown {
		metrics.SyncErrorCount.WithLabelValues(s.prop.Name).Inc()
		return fmt.Errorf("%w: %s", model.ErrNoLocalArchive, archive)
	}

	err := s.verifyLocalArchive(archive)
	if err != nil {
		metrics.SyncErrorCount.WithLabelValues(s.prop.Name).Inc()
		return err
	}

	s.log.Info("Using local archive", "archive", archive, "size", localSize)
	event.Provider = "local"
	metrics.SyncCachedCount.WithLabelValues(s.prop.Name).Inc()

	if noop {
		s.log.Info("Skipping extraction as noop")
		return nil
	}

	if s.alreadyExtracted(localSize) {
		s.log.Debug("Archive already extracted, skipping", "size", localSize)
		return nil
	}

	err = s.prepareDataDirPreserving(archive)
	if err != nil {
		return err
	}

	return s.extractLocked(ctx, event, archive)
}

// alreadyExtracted reports whether the state marker shows an archive of this
// size was already extracted into the data directory
func (s *Synchronizer) alreadyExtracted(size int64) bool {
	st, err := s.readState()

	return err == nil && st.ArchiveSize == size
}

func (s *Synchronizer) extractLocked(ctx context.Context, event *model.SyncEvent, archive string) error {
	size := iu.FileSize(archive)

	runner, err := s.harness.NewRunner()
	if err != nil {
		return err
	}

	tool := ToolForFileName(archive)
	if _, ok, _ := iu.ExecutableInPath(tool); !ok {
		return fmt.Errorf("cannot extract %s: %q not found in path", archive, tool)
	}

	s.log.Info("Extracting archive", "archive", archive, "dest", s.prop.DataDir)
	err = ExtractArchive(ctx, runner, archive, s.prop.DataDir, s.log)
	if err != nil {
		metrics.SyncErrorCount.WithLabelValues(s.prop.Name).Inc()
		return err
	}

	event.Extracted = true

	return s.writeState(state{ArchiveSize: size, Checksum: s.prop.Checksum, Extracted: time.Now().UTC()})
}

// prepareDataDir wipes and recreates the data directory, the archive is not
// kept so this is only safe ahead of a download
func (s *Synchronizer) prepareDataDir() error {
	dir := s.prop.DataDir

	if !iu.IsDirectory(dir) {
		return os.MkdirAll(dir, 0755)
	}

	s.log.Debug("Removing stale data directory", "path", dir)
	err := os.RemoveAll(dir)
	if err != nil {
		return err
	}

	return os.MkdirAll(dir, 0755)
}

// prepareDataDirPreserving wipes the data directory while keeping the archive
// file intact by staging it in a temporary directory for the duration of the wipe
func (s *Synchronizer) prepareDataDirPreserving(archive string) error {
	dir := s.prop.DataDir

	if !iu.IsDirectory(dir) {
		return os.MkdirAll(dir, 0755)
	}

	staging, err := os.MkdirTemp("", "gauntlet-staging-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	staged := filepath.Join(staging, filepath.Base(archive))

	s.log.Info("Copying local archive to temporary storage", "staging", staging)
	err = iu.CopyFile(archive, staged)
	if err != nil {
		return err
	}

	s.log.Info("Deleting data directory to clean up old data", "path", dir)
	err = os.RemoveAll(dir)
	if err != nil {
		return err
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	s.log.Info("Restoring local archive to data directory")
	return iu.CopyFile(staged, archive)
}

// verifyLocalArchive checks the archive is usable before it is trusted as a
// data source, checksums are only verified when configured
func (s *Synchronizer) verifyLocalArchive(archive string) error {
	size := iu.FileSize(archive)
	if size <= 0 {
		return fmt.Errorf("%w: %s", model.ErrNoLocalArchive, archive)
	}

	if s.prop.Checksum == "" {
		return nil
	}

	ok, err := iu.Sha256VerifyFile(archive, s.prop.Checksum)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s did not match %q", model.ErrChecksumMismatch, archive, s.prop.Checksum)
	}

	return nil
}

func (s *Synchronizer) statePath() string {
	return filepath.Join(s.prop.DataDir, StateFileName)
}

func (s *Synchronizer) readState() (*state, error) {
	sb, err := os.ReadFile(s.statePath())
	if err != nil {
		return nil, err
	}

	st := &state{}
	err = yaml.Unmarshal(sb, st)
	if err != nil {
		return nil, err
	}

	return st, nil
}

func (s *Synchronizer) writeState(st state) error {
	sb, err := yaml.Marshal(st)
	if err != nil {
		return err
	}

	return atomic.WriteFile(s.statePath(), bytes.NewReader(sb))
}

// Status reports the current cache state without changing anything on disk
func (s *Synchronizer) Status(ctx context.Context) (*model.FixtureMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive := s.prop.ArchivePath()

	metadata := &model.FixtureMetadata{
		Name:          s.prop.Name,
		LocalSize:     iu.FileSize(archive),
		RemoteSize:    model.SizeUnknown,
		ExtractedSize: model.SizeUnknown,
		DataDirExists: iu.IsDirectory(s.prop.DataDir),
	}

	stat, err := os.Stat(archive)
	if err == nil {
		metadata.ArchiveExists = true
		metadata.MTime = stat.ModTime()

		checksum, err := iu.Sha256HashFile(archive)
		if err == nil {
			metadata.Checksum = checksum
		}
	}

	st, err := s.readState()
	if err == nil {
		metadata.ExtractedSize = st.ArchiveSize
	}

	if !s.prop.LocalOnly {
		err = s.selectProviderUnlocked()
		if err != nil {
			return nil, err
		}

		provider := s.provider.(FixtureProvider)
		metadata.Provider = provider.Name()

		size, err := provider.RemoteSize(ctx, s.prop, s.log)
		if err == nil {
			metadata.RemoteSize = size
		} else {
			s.log.Warn("Could not determine remote archive size", "error", err)
		}
	}

	return metadata, nil
}

func (s *Synchronizer) selectProviderUnlocked() error {
	if s.provider != nil {
		return nil
	}

	runner, err := s.harness.NewRunner()
	if err != nil {
		return err
	}

	s.log.Debug("Trying to find providers")
	selected, err := registry.FindSuitableProvider(s.prop, s.log, runner)
	if err != nil {
		return err
	}

	if selected == nil {
		return model.ErrNoSuitableProvider
	}

	if _, ok := selected.(FixtureProvider); !ok {
		return fmt.Errorf("%w: %s is not a fixture provider", model.ErrNoSuitableProvider, selected.Name())
	}

	s.log.Debug("Selected provider", "provider", selected.Name())
	s.provider = selected

	return nil
}

// SelectProvider resolves and returns the name of the provider that will serve this fixture set
func (s *Synchronizer) SelectProvider() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.selectProviderUnlocked()
	if err != nil {
		return "", err
	}

	return s.provider.Name(), nil
}
