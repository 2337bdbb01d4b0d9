// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"context"
	"net/http"
	"time"
)

// HttpGetResponse performs a HTTP GET request with an optional timeout, the
// returned cancel function must be called once the body has been consumed
func HttpGetResponse(ctx context.Context, url string, timeout time.Duration, hdr http.Header) (*http.Response, context.CancelFunc, error) {
	return httpResponse(ctx, http.MethodGet, url, timeout, hdr)
}

// HttpHeadResponse performs a HTTP HEAD request with an optional timeout, the
// returned cancel function must be called once the response has been read
func HttpHeadResponse(ctx context.Context, url string, timeout time.Duration, hdr http.Header) (*http.Response, context.CancelFunc, error) {
	return httpResponse(ctx, http.MethodHead, url, timeout, hdr)
}

func httpResponse(ctx context.Context, method string, url string, timeout time.Duration, hdr http.Header) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	for k, vals := range hdr {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	return resp, cancel, nil
}
