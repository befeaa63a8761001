// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel error kinds, matched with errors.Is. Failures outside these
// kinds (credential lookup, a malformed Content-Length or URL) are returned
// wrapped without a sentinel.
var (
	// ErrVersioningNotEnabled is returned from Open when the HEAD response
	// carries no usable x-amz-version-id.
	ErrVersioningNotEnabled = errors.New("s3sqlite: bucket versioning not enabled")

	// ErrHTTPStatus wraps a non-2xx response from a HEAD or GET.
	ErrHTTPStatus = errors.New("s3sqlite: unexpected http status")

	// ErrTransport wraps a network/transport-level failure from the
	// injected HTTP client.
	ErrTransport = errors.New("s3sqlite: transport error")

	// ErrSQLite wraps a non-OK return code from the SQLite engine:
	// prepare, bind, or step failures.
	ErrSQLite = errors.New("s3sqlite: sqlite error")

	// ErrContextClosed is returned when a caller attempts to read rows
	// after the owning query scope has exited.
	ErrContextClosed = errors.New("s3sqlite: query scope closed")

	// ErrShortRange is returned when a range GET's response body is
	// shorter than requested, or the store returned 200 instead of 206.
	ErrShortRange = errors.New("s3sqlite: short range response")
)

// HTTPStatusError carries the status code and body alongside ErrHTTPStatus.
type HTTPStatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *HTTPStatusError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if msg == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, msg)
}

func (e *HTTPStatusError) Unwrap() error { return ErrHTTPStatus }

// SQLiteError carries the engine's errmsg text alongside ErrSQLite.
type SQLiteError struct {
	Code int
	Msg  string
}

func (e *SQLiteError) Error() string {
	return fmt.Sprintf("sqlite error %d: %s", e.Code, e.Msg)
}

func (e *SQLiteError) Unwrap() error { return ErrSQLite }

// wrap returns err wrapped with the calling function's name and any extra
// context strings as a prefix, e.g. "readat (range 100-199): EOF". A
// nil error wraps to nil.
func wrap(err error, context ...string) error {
	if err == nil {
		return nil
	}

	prefix := "s3sqlite"
	pc, _, _, ok := runtime.Caller(1)
	if details := runtime.FuncForPC(pc); ok && details != nil {
		prefix = strings.ToLower(details.Name())
		if dotIdx := strings.LastIndex(prefix, "."); dotIdx > 0 {
			prefix = prefix[dotIdx+1:]
		}
	}

	if len(context) > 0 {
		for i := range context {
			context[i] = strings.TrimSpace(context[i])
		}
		return fmt.Errorf("%s (%s): %w", prefix, strings.Join(context, ", "), err)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
