// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVFSNamesAreUniqueAcrossConcurrentSessions(t *testing.T) {
	const n = 50
	names := make([]string, n)
	unregs := make([]func(), n)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name, unreg, err := registerVFS(&rangeReader{})
			require.NoError(t, err)
			mu.Lock()
			names[i] = name
			unregs[i] = unreg
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, name := range names {
		assert.False(t, seen[name], "duplicate VFS name %q", name)
		seen[name] = true
	}

	for _, unreg := range unregs {
		unreg()
	}
}
