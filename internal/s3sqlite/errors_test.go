// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, wrap(nil))
}

func TestWrapKeepsMessageAndSentinel(t *testing.T) {
	err := func() error {
		return wrap(ErrShortRange)
	}()
	assert.ErrorContains(t, err, "short range response")
	assert.True(t, errors.Is(err, ErrShortRange))
}

func TestWrapJoinsContext(t *testing.T) {
	err := wrap(ErrHTTPStatus, " offset=10 ", "range")
	assert.ErrorContains(t, err, "offset=10, range")
}

func TestHTTPStatusErrorUnwraps(t *testing.T) {
	err := &HTTPStatusError{Method: "GET", URL: "https://x", Status: 403, Body: []byte("denied")}
	assert.True(t, errors.Is(err, ErrHTTPStatus))
	assert.ErrorContains(t, err, "denied")
}
