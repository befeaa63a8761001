// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindObjectCapturesVersionAndSize(t *testing.T) {
	current := "v1"
	srv := newObjectStore("/db.sqlite", map[string][]byte{"v1": []byte("hello world")}, &current)
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	binding, err := bindObject(context.Background(), sign, newTestHTTPClient(), srv.URL+"/db.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "v1", binding.VersionID)
	assert.EqualValues(t, len("hello world"), binding.Size)
}

func TestBindObjectRejectsUnversionedBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	_, err := bindObject(context.Background(), sign, newTestHTTPClient(), srv.URL+"/db.sqlite")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersioningNotEnabled))
}

func TestBindObjectRejectsNullVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-amz-version-id", "null")
		w.Header().Set("Content-Length", "5")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	_, err := bindObject(context.Background(), sign, newTestHTTPClient(), srv.URL+"/db.sqlite")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersioningNotEnabled))
}

func TestBindObjectSurfacesHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	sign := newSigner(staticCreds, "us-east-1")
	_, err := bindObject(context.Background(), sign, newTestHTTPClient(), srv.URL+"/db.sqlite")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTPStatus))
}
