// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
)

var (
	ErrFixtureInvalid     = errors.New("invalid fixture set")
	ErrNoLocalArchive     = errors.New("local test data archive not present")
	ErrNoUsableArchive    = errors.New("no usable test data archive could be obtained")
	ErrChecksumMismatch   = errors.New("archive checksum mismatch")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrNoSuitableProvider = errors.New("no suitable provider found")
	ErrDuplicateProvider  = errors.New("provider already exists")
	ErrUnknownGate        = errors.New("unknown gate")
	ErrSessionAborted     = errors.New("session aborted")
)
