// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package natsfx

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/synadia-io/orbit.go/natscontext"

	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/model"
)

const ProviderName = "objectstore"

// DefaultNatsContext is used when the fixture set does not name a context
const DefaultNatsContext = "GAUNTLET"

// Provider fetches fixture archives from a NATS JetStream object store,
// fixture URLs look like obj://bucket/archive.tar.gz
type Provider struct {
	log    model.Logger
	runner model.CommandRunner

	nc *nats.Conn
	mu sync.Mutex
}

func NewObjectStoreProvider(log model.Logger, runner model.CommandRunner) (*Provider, error) {
	return &Provider{log: log, runner: runner}, nil
}

func (p *Provider) connect(natsContext string) (*nats.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc != nil {
		return p.nc, nil
	}

	if natsContext == "" {
		natsContext = DefaultNatsContext
	}

	var err error

	p.nc, _, err = natscontext.Connect(natsContext)
	if err != nil {
		return nil, err
	}

	return p.nc, nil
}

// parseObjectURL splits obj://bucket/name into its bucket and object parts
func parseObjectURL(raw string) (bucket string, name string, err error) {
	uri, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	bucket = uri.Host
	name = strings.TrimPrefix(uri.Path, "/")

	if bucket == "" || name == "" {
		return "", "", fmt.Errorf("object store url must be in the form obj://bucket/name")
	}

	return bucket, name, nil
}

func (p *Provider) objectStore(properties *model.FixtureSetProperties) (nats.ObjectStore, string, error) {
	bucket, name, err := parseObjectURL(properties.Url)
	if err != nil {
		return nil, "", err
	}

	nc, err := p.connect(properties.NatsContext)
	if err != nil {
		return nil, "", err
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, "", err
	}

	store, err := js.ObjectStore(bucket)
	if err != nil {
		return nil, "", err
	}

	return store, name, nil
}

// RemoteSize returns the object size from the store metadata, the object body is not fetched
func (p *Provider) RemoteSize(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error) {
	store, name, err := p.objectStore(properties)
	if err != nil {
		return model.SizeUnknown, err
	}

	p.log.Debug("Probing object size", "url", properties.Url)

	info, err := store.GetInfo(name, nats.Context(ctx))
	if err != nil {
		return model.SizeUnknown, err
	}

	return int64(info.Size), nil
}

// Download fetches the object into a temporary file that is renamed over the
// archive path only once fully written
func (p *Provider) Download(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error) {
	store, name, err := p.objectStore(properties)
	if err != nil {
		return 0, err
	}

	p.log.Info("Downloading", "url", properties.Url)

	dest := properties.ArchivePath()
	parent := filepath.Dir(dest)

	err = os.MkdirAll(parent, 0755)
	if err != nil {
		return 0, err
	}

	tf, err := os.CreateTemp(parent, fmt.Sprintf("%s-*", properties.ArchiveName))
	if err != nil {
		return 0, err
	}
	tf.Close()
	defer os.Remove(tf.Name())

	err = store.GetFile(name, tf.Name(), nats.Context(ctx))
	if err != nil {
		return 0, err
	}

	copied := iu.FileSize(tf.Name())
	log.Info("Archive downloaded", "bytes", copied)

	return copied, os.Rename(tf.Name(), dest)
}

func (p *Provider) Name() string {
	return ProviderName
}
