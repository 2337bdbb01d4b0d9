// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the harness configuration file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"

	"github.com/choria-io/gauntlet/model"
)

const (
	// DefaultArchiveName is the archive file name used when none is configured
	DefaultArchiveName = "test_data.tar.gz"

	// DefaultDataDir is the data directory used when none is configured
	DefaultDataDir = ".data"

	// DefaultTimeout bounds remote probes and downloads when none is configured
	DefaultTimeout = 10 * time.Minute
)

// Config holds the harness configuration
type Config struct {
	// Name identifies the fixture set in events and logs. Defaults to the
	// archive name.
	Name string `yaml:"name"`

	// Archive is the file name of the test data archive inside the data
	// directory. Defaults to DefaultArchiveName.
	Archive string `yaml:"archive"`

	// Url is the remote location of the archive. The scheme selects the
	// provider, https:// and obj:// sources are supported.
	Url string `yaml:"url"`

	// DataDir is the directory the archive is cached in and extracted
	// into. Defaults to DefaultDataDir relative to the configuration file.
	DataDir string `yaml:"data_dir"`

	// Checksum is an optional expected sha256 checksum of the archive,
	// verified after download and before any local archive is trusted.
	Checksum string `yaml:"checksum"`

	// Timeout bounds the remote probe and download (e.g. "30s", "10m").
	// Defaults to DefaultTimeout.
	Timeout         string `yaml:"timeout"`
	timeoutDuration time.Duration

	// TestCommand is the command executed by gauntlet run, it receives the
	// gate plan via environment variables.
	TestCommand string `yaml:"test_command"`

	// Gates maps test identifiers to the conditions gating them.
	Gates map[string]model.Conditions `yaml:"gates"`

	// SessionDir stores session events in a directory of files when set.
	SessionDir string `yaml:"session_dir"`

	// MonitorPort is the port to listen on for accessing Prometheus stats
	MonitorPort int `yaml:"monitor_port"`

	// LogLevel is the log level to use
	// Valid values: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// NatsContext is the NATS context to use for obj:// archive sources
	NatsContext string `yaml:"nats_context"`
}

// NewDefaultConfig creates a configuration with all defaults applied
func NewDefaultConfig() *Config {
	return &Config{
		Archive:         DefaultArchiveName,
		DataDir:         DefaultDataDir,
		Gates:           make(map[string]model.Conditions),
		LogLevel:        "info",
		NatsContext:     "GAUNTLET",
		timeoutDuration: DefaultTimeout,
	}
}

// ParseConfig parses and validates a configuration document
func ParseConfig(c []byte) (*Config, error) {
	err := validateSchema(c)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()

	err = yaml.Unmarshal(c, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout != "" {
		cfg.timeoutDuration, err = fisk.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Name == "" {
		cfg.Name = cfg.Archive
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads, parses and validates a configuration file, paths in the
// configuration are resolved relative to the file
func LoadFile(path string) (*Config, error) {
	cb, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseConfig(cb)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Clean(filepath.Join(filepath.Dir(path), cfg.DataDir))
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Archive == "" {
		return fmt.Errorf("archive must be set")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}

	if c.timeoutDuration < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	for id, cond := range c.Gates {
		err := cond.Validate()
		if err != nil {
			return fmt.Errorf("gate %s: %w", id, err)
		}
	}

	return nil
}

// TimeoutDuration is the parsed timeout
func (c *Config) TimeoutDuration() time.Duration {
	return c.timeoutDuration
}

// FixtureSet builds the fixture set properties for the synchronizer from the
// configuration and session settings
func (c *Config) FixtureSet(settings model.Settings) model.FixtureSetProperties {
	return model.FixtureSetProperties{
		Name:        c.Name,
		ArchiveName: c.Archive,
		Url:         c.Url,
		DataDir:     c.DataDir,
		Checksum:    c.Checksum,
		LocalOnly:   settings.LocalData,
		NatsContext: c.NatsContext,
		Timeout:     c.timeoutDuration,
	}
}
