// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// rangeReader serves byte ranges of one pinned ObjectBinding via signed
// HTTP range GETs. It never retries and never falls back to a full GET:
// every read is exactly the range the caller asked for, or an error.
type rangeReader struct {
	sign    *signer
	client  HTTPClient
	binding *ObjectBinding
}

func newRangeReader(sign *signer, client HTTPClient, binding *ObjectBinding) *rangeReader {
	return &rangeReader{sign: sign, client: client, binding: binding}
}

// readAt copies bytes [off, off+len(buf)) of the pinned object version into
// buf, clamped to the object's fixed size, and returns how many bytes it
// wrote. n < len(buf) is expected and NOT an error whenever the request
// ran past end-of-file (the VFS Adapter zero-fills the remainder and
// reports SQLITE_IOERR_SHORT_READ, which the engine tolerates during
// header probes); it IS an error whenever the store returns fewer bytes
// than the clamped range promised, which signals a transport problem
// rather than EOF.
func (r *rangeReader) readAt(ctx context.Context, buf []byte, off int64) (int, error) {
	if len(buf) == 0 || off >= r.binding.Size {
		return 0, nil
	}

	want := int64(len(buf))
	if off+want > r.binding.Size {
		want = r.binding.Size - off
	}
	end := off + want - 1

	versionedURL := versionedURL(r.binding.URL, r.binding.VersionID)

	header := http.Header{
		"Range": []string{fmt.Sprintf("bytes=%d-%d", off, end)},
	}

	signed, err := r.sign.sign(ctx, http.MethodGet, versionedURL, header)
	if err != nil {
		return 0, wrap(err, fmt.Sprintf("range %d-%d", off, end))
	}

	resp, err := r.client.Do(ctx, http.MethodGet, versionedURL, signed)
	if err != nil {
		return 0, wrap(fmt.Errorf("%w: %w", ErrTransport, err), fmt.Sprintf("range %d-%d", off, end))
	}

	if resp.Status != http.StatusPartialContent {
		if resp.Status == http.StatusOK {
			return 0, wrap(ErrShortRange, "store ignored range request, returned 200")
		}
		return 0, wrap(&HTTPStatusError{Method: http.MethodGet, URL: versionedURL, Status: resp.Status, Body: resp.Body})
	}

	n := copy(buf, resp.Body)
	if int64(n) < want {
		slog.WarnContext(ctx, "short range response", slog.Int64("offset", off), slog.Int64("want", want), slog.Int("got", n))
		return n, wrap(ErrShortRange, fmt.Sprintf("wanted %d got %d", want, n))
	}

	return n, nil
}

// size returns the pinned object's byte length, fixed for the session.
func (r *rangeReader) size() int64 {
	return r.binding.Size
}

// versionedURL appends ?versionId=<id> to rawURL, participating in the
// canonical query string so every range GET after Open targets the exact
// version pinned at session open, never "latest".
func versionedURL(rawURL, versionID string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("versionId", versionID)
	u.RawQuery = q.Encode()
	return u.String()
}
