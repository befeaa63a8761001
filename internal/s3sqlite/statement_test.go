// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitScriptDetectsTrailingWhitespaceOnlyTail(t *testing.T) {
	assert.True(t, splitScript(""))
	assert.True(t, splitScript("   \n\t "))
	assert.False(t, splitScript("SELECT 1;"))
}
