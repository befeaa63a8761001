// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultHTTPClient is the HTTPClient used when a caller supplies no
// HTTPClientProvider. It retries transport errors and 5xx responses with
// exponential backoff; the core itself never retries, so this retrying
// lives strictly at the edge, same as restic's own backoff-wrapped HTTP
// calls.
type defaultHTTPClient struct {
	inner *http.Client
}

// NewDefaultHTTPClient builds the HTTPClient used when Options.HTTPClient
// is left nil.
func NewDefaultHTTPClient() (HTTPClient, error) {
	return &defaultHTTPClient{inner: &http.Client{Timeout: 30 * time.Second}}, nil
}

func (c *defaultHTTPClient) Do(ctx context.Context, method, url string, header http.Header) (*HTTPResponse, error) {
	var result *HTTPResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return backoff.Permanent(wrap(err))
		}
		req.Header = header.Clone()

		resp, err := c.inner.Do(req)
		if err != nil {
			return wrap(err, "do", method, url)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return wrap(err, "read body")
		}

		if resp.StatusCode >= 500 {
			return wrap(&HTTPStatusError{Method: method, URL: url, Status: resp.StatusCode, Body: body})
		}

		result = &HTTPResponse{Status: resp.StatusCode, Header: resp.Header, Body: body}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, wrap(err, method, url)
	}
	return result, nil
}

func (c *defaultHTTPClient) Close() error {
	c.inner.CloseIdleConnections()
	return nil
}
