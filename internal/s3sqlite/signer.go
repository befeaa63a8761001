// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"

	"github.com/michalc/sqlite-s3-query-go/internal/slogutil"
)

// signer produces SigV4 headers for a HEAD or GET request without ever
// performing any I/O itself.
type signer struct {
	creds  CredentialsProvider
	region string
}

func newSigner(creds CredentialsProvider, region string) *signer {
	return &signer{creds: creds, region: region}
}

// sign returns the header set to attach to method/rawURL, with body set to
// the UNSIGNED-PAYLOAD sentinel (the aws-sdk-go signer's UnsignedPayload
// option sends it as x-amz-content-sha256).
func (s *signer) sign(ctx context.Context, method, rawURL string, extraHeader http.Header) (http.Header, error) {
	creds, err := s.creds(ctx)
	if err != nil {
		return nil, wrap(err, "fetch credentials")
	}
	if creds.Region == "" {
		creds.Region = s.region
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, wrap(err, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, wrap(err)
	}
	for k, vs := range extraHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	staticCreds := credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)

	// nonCachingProvider forces Credentials.Get to call Retrieve on every
	// Sign call: the provider callback, not aws-sdk-go, owns freshness.
	awsCreds := credentials.NewCredentials(&nonCachingProvider{inner: staticCreds})

	signer := v4.NewSigner(awsCreds)
	signer.DisableURIPathEscaping = true
	signer.UnsignedPayload = true

	if _, err := signer.Sign(req, nil, "s3", creds.Region, time.Now()); err != nil {
		slog.WarnContext(ctx, "failed to sign request", slog.String("method", method), slogutil.Error(err))
		return nil, wrap(err, "sign request")
	}

	slog.DebugContext(ctx, "signed request", slog.String("method", method), slog.String("url", rawURL))

	return req.Header, nil
}

// nonCachingProvider adapts a credentials.Provider to always report expired,
// so credentials.Credentials.Get never returns a memoized value and our
// CredentialsProvider callback is invoked for every single signed request,
// letting callers rotate keys without reopening the session.
type nonCachingProvider struct {
	inner credentials.Provider
}

func (p *nonCachingProvider) Retrieve() (credentials.Value, error) {
	return p.inner.Retrieve()
}

func (p *nonCachingProvider) IsExpired() bool {
	return true
}
