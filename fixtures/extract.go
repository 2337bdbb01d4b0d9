// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package fixtures

import (
	"context"
	"fmt"
	"os"
	"time"

	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/model"
)

// ExtractArchive extracts an archive into dest using the system tar or unzip
// tools, dest is created when missing
func ExtractArchive(ctx context.Context, runner model.CommandRunner, archive string, dest string, log model.Logger) error {
	if dest == "" {
		return fmt.Errorf("extract destination not set")
	}

	if !iu.FileExists(dest) {
		log.Info("Creating data directory", "path", dest)
		err := os.MkdirAll(dest, 0755)
		if err != nil {
			return err
		}
	}

	var opts model.ExtendedExecOptions

	switch {
	case iu.FileHasSuffix(archive, ".tar.gz", ".tgz"):
		opts = model.ExtendedExecOptions{Command: "tar", Args: []string{"-xzf", archive, "-C", dest}}
	case iu.FileHasSuffix(archive, ".tar"):
		opts = model.ExtendedExecOptions{Command: "tar", Args: []string{"-xf", archive, "-C", dest}}
	case iu.FileHasSuffix(archive, ".zip"):
		opts = model.ExtendedExecOptions{Command: "unzip", Args: []string{"-o", "-d", dest, archive}}
	default:
		return fmt.Errorf("archive type not supported")
	}

	opts.Cwd = dest
	opts.Timeout = time.Minute

	_, stderr, exitCode, err := runner.ExecuteWithOptions(ctx, opts)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("%s exited with code %d: %s", opts.Command, exitCode, stderr)
	}

	return nil
}

// ToolForFileName returns the system tool needed to extract an archive file name
func ToolForFileName(name string) string {
	switch {
	case iu.FileHasSuffix(name, ".zip"):
		return "unzip"
	case iu.FileHasSuffix(name, ".tar.gz", ".tgz", ".tar"):
		return "tar"
	default:
		return ""
	}
}
