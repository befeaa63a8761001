// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package s3sqlite implements read-only query access to a SQLite database
// file that lives as an immutable, versioned object in an S3-compatible
// object store, via a custom SQLite VFS that serves page reads as signed
// HTTP range GETs pinned to one object version for the life of a session.
package s3sqlite

import (
	"context"
	"net/http"
)

// Credentials are the values needed to sign a request, obtained per
// signing request from a CredentialsProvider. Never cached by the core.
type Credentials struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string // optional
}

// CredentialsProvider is called once per signed request; implementations
// rotating keys are observed immediately since nothing here is memoized.
type CredentialsProvider func(ctx context.Context) (Credentials, error)

// HTTPResponse is the normalized result of an HTTPClient request.
type HTTPResponse struct {
	Status  int
	Header  http.Header
	Body    []byte
}

// HTTPClient is the blocking request executor the core calls for every
// HEAD and range GET. The core never dials a socket itself.
type HTTPClient interface {
	Do(ctx context.Context, method, url string, header http.Header) (*HTTPResponse, error)
	Close() error
}

// HTTPClientProvider constructs (or returns) the HTTPClient a session will
// use for its lifetime.
type HTTPClientProvider func() (HTTPClient, error)
