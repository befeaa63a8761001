// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeReaderReturnsExactBytes(t *testing.T) {
	content := []byte("0123456789abcdefghij")
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{"v1": content}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	binding := &ObjectBinding{URL: srv.URL + "/db.sqlite", VersionID: "v1", Size: int64(len(content))}
	rr := newRangeReader(sign, newTestHTTPClient(), binding)

	buf := make([]byte, 5)
	n, err := rr.readAt(context.Background(), buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, bytes.Equal(buf, content[3:8]))
}

func TestRangeReaderClampsPastEOF(t *testing.T) {
	content := []byte("0123456789")
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{"v1": content}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	binding := &ObjectBinding{URL: srv.URL + "/db.sqlite", VersionID: "v1", Size: int64(len(content))}
	rr := newRangeReader(sign, newTestHTTPClient(), binding)

	buf := make([]byte, 6)
	n, err := rr.readAt(context.Background(), buf, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, content[8:10], buf[:2])
}

func TestRangeReaderReadAtEOFReturnsZero(t *testing.T) {
	content := []byte("0123456789")
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{"v1": content}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	binding := &ObjectBinding{URL: srv.URL + "/db.sqlite", VersionID: "v1", Size: int64(len(content))}
	rr := newRangeReader(sign, newTestHTTPClient(), binding)

	buf := make([]byte, 4)
	n, err := rr.readAt(context.Background(), buf, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRangeReaderPinsVersionAcrossOverwrite(t *testing.T) {
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{
		"v1": []byte("original-bytes-v1!!!"),
		"v2": []byte("REPLACED-bytes-v2!!!"),
	}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	binding := &ObjectBinding{URL: srv.URL + "/db.sqlite", VersionID: "v1", Size: 20}
	rr := newRangeReader(sign, newTestHTTPClient(), binding)

	current = "v2" // simulate a concurrent overwrite of the live object

	buf := make([]byte, 8)
	n, err := rr.readAt(context.Background(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte("original"), buf)
}

func TestRangeReaderUnknownVersionIsAnError(t *testing.T) {
	content := []byte("abcdefgh")
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{"v1": content}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	// A version id that no longer exists on the store (e.g. lifecycle
	// expiry) must fail as an http-status error, never silently fall back
	// to whatever the current version happens to be.
	binding := &ObjectBinding{URL: srv.URL + "/db.sqlite", VersionID: "missing", Size: int64(len(content))}
	rr := newRangeReader(sign, newTestHTTPClient(), binding)

	_, err := rr.readAt(context.Background(), make([]byte, 4), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTPStatus))
}
