// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package httpfx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/model"
)

const ProviderName = "http"

type Provider struct {
	log    model.Logger
	runner model.CommandRunner
}

func NewHttpProvider(log model.Logger, runner model.CommandRunner) (*Provider, error) {
	return &Provider{log: log, runner: runner}, nil
}

func (p *Provider) requestURL(properties *model.FixtureSetProperties) (*url.URL, error) {
	uri, err := url.Parse(properties.Url)
	if err != nil {
		return nil, err
	}

	if properties.Username != "" && properties.Password != "" {
		uri.User = url.UserPassword(properties.Username, properties.Password)
	}

	return uri, nil
}

func requestHeaders(properties *model.FixtureSetProperties) http.Header {
	hdr := http.Header{}
	for k, v := range properties.Headers {
		hdr.Add(k, v)
	}

	return hdr
}

// RemoteSize queries the Content-Length of the archive with a HEAD request, the body is never fetched
func (p *Provider) RemoteSize(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error) {
	uri, err := p.requestURL(properties)
	if err != nil {
		return model.SizeUnknown, err
	}

	p.log.Debug("Probing remote archive size", "url", iu.RedactUrlCredentials(uri))

	resp, cancel, err := iu.HttpHeadResponse(ctx, uri.String(), properties.Timeout, requestHeaders(properties))
	if err != nil {
		return model.SizeUnknown, err
	}
	defer resp.Body.Close()
	defer cancel()

	if resp.StatusCode != http.StatusOK {
		return model.SizeUnknown, fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, resp.Status)
	}

	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return model.SizeUnknown, fmt.Errorf("no Content-Length reported by %s", iu.RedactUrlCredentials(uri))
	}

	size, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return model.SizeUnknown, fmt.Errorf("invalid Content-Length %q: %w", cl, err)
	}

	return size, nil
}

// Download fetches the archive into a temporary file that is renamed over the
// archive path only once fully written
func (p *Provider) Download(ctx context.Context, properties *model.FixtureSetProperties, log model.Logger) (int64, error) {
	uri, err := p.requestURL(properties)
	if err != nil {
		return 0, err
	}

	p.log.Info("Downloading", "url", iu.RedactUrlCredentials(uri))

	resp, cancel, err := iu.HttpGetResponse(ctx, uri.String(), properties.Timeout, requestHeaders(properties))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	defer cancel()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, resp.Status)
	}

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
	defer os.Remove(tf.Name())

	p.log.Info("Saving archive", "dest", dest, "tf", tf.Name())

	copied, err := io.Copy(tf, resp.Body)
	if err != nil {
		tf.Close()
		return 0, fmt.Errorf("could not copy file: %w", err)
	}
	log.Info("Archive downloaded", "bytes", copied)

	err = tf.Close()
	if err != nil {
		return 0, err
	}

	return copied, os.Rename(tf.Name(), dest)
}

func (p *Provider) Name() string {
	return ProviderName
}
