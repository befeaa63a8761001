// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3/vfs"

	"github.com/michalc/sqlite-s3-query-go/internal/timeutil"
)

// registryMu serializes register/unregister the way libsqlite3's own
// process-wide VFS list expects to be mutated: one at a time, across all
// sessions in the process, never as a default VFS.
var registryMu sync.Mutex

// registerVFS wires one session's rangeReader into the process-wide
// sqlite3 VFS list under a name that cannot collide with any other live
// session: a strictly monotonic counter guards against two sessions
// racing the clock, and a UUID nonce guards against counter reuse across
// process restarts sharing a registry (e.g. an embedder that persists
// names). The name is returned so the session can open "file:...&vfs=<name>"
// and unregister it again on close.
func registerVFS(rr *rangeReader) (name string, unregister func(), err error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name = fmt.Sprintf("s3sqlite-%d-%s", timeutil.StrictlyMonotonicNanos(), uuid.NewString())

	v := newFileVFS(rr)
	vfs.Register(name, v)

	return name, func() {
		registryMu.Lock()
		defer registryMu.Unlock()
		vfs.Unregister(name)
	}, nil
}
