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
	"strconv"
)

// bindObject issues a single signed HEAD against rawURL and pins the
// session to the version and size it reports. A bucket without versioning
// enabled returns no x-amz-version-id (or "null"), which is always a hard
// error: an unversioned object can mutate or vanish mid-session.
func bindObject(ctx context.Context, sign *signer, client HTTPClient, rawURL string) (*ObjectBinding, error) {
	header, err := sign.sign(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, wrap(err, rawURL)
	}

	resp, err := client.Do(ctx, http.MethodHead, rawURL, header)
	if err != nil {
		return nil, wrap(fmt.Errorf("%w: %w", ErrTransport, err), rawURL)
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, wrap(&HTTPStatusError{Method: http.MethodHead, URL: rawURL, Status: resp.Status, Body: resp.Body})
	}

	versionID := resp.Header.Get("x-amz-version-id")
	if versionID == "" || versionID == "null" {
		return nil, wrap(ErrVersioningNotEnabled, rawURL)
	}

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return nil, wrap(err, "parse content-length")
	}

	slog.DebugContext(ctx, "bound object version",
		slog.String("url", rawURL), slog.String("version", versionID), slog.Int64("size", size))

	return &ObjectBinding{URL: rawURL, VersionID: versionID, Size: size}, nil
}
