// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package fixtures keeps a local test data directory synchronized with a
// remote archive, downloading only when the remote copy differs in size from
// the cached local archive
package fixtures

import (
	"context"

	"github.com/choria-io/gauntlet/fixtures/httpfx"
	"github.com/choria-io/gauntlet/fixtures/natsfx"
	"github.com/choria-io/gauntlet/model"
)

func init() {
	httpfx.Register()
	natsfx.Register()
}

// FixtureProvider fetches fixture archives from a source selected by URL scheme
type FixtureProvider interface {
	model.Provider

	// RemoteSize returns the byte size of the remote archive without downloading the body
	RemoteSize(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error)

	// Download fetches the remote archive and stores it at the archive path
	Download(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error)
}
