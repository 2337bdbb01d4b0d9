// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	iu "github.com/choria-io/gauntlet/internal/util"
)

const (
	// SyncEventProtocol is the protocol identifier for fixture sync events
	SyncEventProtocol = "io.choria.gauntlet.v1.sync.event"

	// FixtureTypeName is the type name for fixture set resources
	FixtureTypeName = "fixtures"

	// SizeUnknown is the sentinel size used when a local or remote archive size could not be determined
	SizeUnknown int64 = -1
)

// FixtureSetProperties describes one set of test fixtures managed by the synchronizer
type FixtureSetProperties struct {
	Name            string            `json:"name" yaml:"name"`                                             // Name identifies the fixture set in events and logs
	ArchiveName     string            `json:"archive" yaml:"archive"`                                       // ArchiveName is the file name of the archive inside the data directory
	Url             string            `json:"url" yaml:"url"`                                               // Url is where the archive is fetched from, scheme selects the provider
	DataDir         string            `json:"data_dir" yaml:"data_dir"`                                     // DataDir is the directory the archive is cached in and extracted into
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`                   // Headers specify any HTTP headers to include in requests
	Username        string            `json:"username,omitempty" yaml:"username,omitempty"`                 // Username specifies the username to use for basic auth
	Password        string            `json:"password,omitempty" yaml:"password,omitempty"`                 // Password specifies the password to use for basic auth
	Checksum        string            `json:"checksum,omitempty" yaml:"checksum,omitempty"`                 // Checksum is an optional expected sha256 of the archive
	LocalOnly       bool              `json:"local_only,omitempty" yaml:"local_only,omitempty"`             // LocalOnly skips all network access and requires a local archive
	Provider        string            `json:"provider,omitempty" yaml:"provider,omitempty"`                 // Provider forces a specific provider rather than scheme based selection
	NatsContext     string            `json:"nats_context,omitempty" yaml:"nats_context,omitempty"`         // NatsContext is the NATS context used for obj:// archive sources
	Timeout         time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`                   // Timeout bounds the remote probe and download
}

// FixtureMetadata contains detailed metadata about a fixture set on disk
type FixtureMetadata struct {
	Name          string    `json:"name" yaml:"name"`
	ArchiveExists bool      `json:"archive_exists,omitempty" yaml:"archive_exists,omitempty"`
	DataDirExists bool      `json:"data_dir_exists,omitempty" yaml:"data_dir_exists,omitempty"`
	Checksum      string    `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	MTime         time.Time `json:"mtime,omitempty" yaml:"mtime,omitempty"`
	LocalSize     int64     `json:"local_size" yaml:"local_size"`
	RemoteSize    int64     `json:"remote_size" yaml:"remote_size"`
	ExtractedSize int64     `json:"extracted_size" yaml:"extracted_size"`
	Provider      string    `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// UpToDate reports if the extracted directory contents match the cached archive
func (m *FixtureMetadata) UpToDate() bool {
	return m.ArchiveExists && m.DataDirExists && m.ExtractedSize == m.LocalSize
}

// ArchivePath is the full path to the cached archive inside the data directory
func (p *FixtureSetProperties) ArchivePath() string {
	return filepath.Join(p.DataDir, p.ArchiveName)
}

// Validate validates the fixture set properties
func (p *FixtureSetProperties) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if p.ArchiveName == "" {
		return fmt.Errorf("archive cannot be empty")
	}

	if strings.Contains(p.ArchiveName, "/") {
		return fmt.Errorf("archive must be a bare file name")
	}

	if !iu.FileHasSuffix(p.ArchiveName, ".zip", ".tar.gz", ".tgz", ".tar") {
		return fmt.Errorf("archive must end in .zip, .tar.gz, .tgz, or .tar")
	}

	if p.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	if filepath.Clean(p.DataDir) != p.DataDir {
		return fmt.Errorf("data_dir must be canonical")
	}

	if !p.LocalOnly {
		if p.Url == "" {
			return fmt.Errorf("url cannot be empty")
		}

		parsedURL, err := url.Parse(p.Url)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}

		if !parsedURL.IsAbs() {
			return fmt.Errorf("url must be absolute (include a scheme like https:// or obj://)")
		}

		filename := filepath.Base(parsedURL.Path)
		if filename == "" || filename == "." || filename == "/" {
			return fmt.Errorf("url must have a filename in the path")
		}

		urlType := ArchiveTypeFromFilename(filename)
		nameType := ArchiveTypeFromFilename(p.ArchiveName)
		if urlType != nameType {
			return fmt.Errorf("url and archive must have the same archive type: url is %s, archive is %s", urlType, nameType)
		}
	}

	if p.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// ArchiveTypeFromFilename returns a normalized archive type string based on the file extension.
// Returns "tar.gz" for .tar.gz and .tgz, "tar" for .tar, "zip" for .zip, or "unknown".
func ArchiveTypeFromFilename(filename string) string {
	if iu.FileHasSuffix(filename, ".tar.gz", ".tgz") {
		return "tar.gz"
	}
	if iu.FileHasSuffix(filename, ".tar") {
		return "tar"
	}
	if iu.FileHasSuffix(filename, ".zip") {
		return "zip"
	}
	return "unknown"
}

// ToYamlManifest returns the fixture set properties as a yaml document
func (p *FixtureSetProperties) ToYamlManifest() (yaml.RawMessage, error) {
	return yaml.Marshal(p)
}
