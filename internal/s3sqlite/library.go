// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"fmt"

	sqlite3 "github.com/ncruces/go-sqlite3"
)

// engineConn is the thin seam between the Session and the underlying
// sqlite3 engine binding: ncruces/go-sqlite3's Conn/Stmt methods, with
// the VFS sitting underneath it as a registered Go value.
type engineConn struct {
	conn *sqlite3.Conn
}

// openFlags is passed explicitly to OpenFlags, not left for the engine to
// infer from the URI alone: NOMUTEX because the session guarantees
// single-threaded use and wants no engine-internal locking, URI so the
// vfs= query parameter is honored, and READONLY so the engine itself
// refuses any write path rather than relying solely on the VFS's write
// methods failing after the fact.
const openFlags = sqlite3.OPEN_READONLY | sqlite3.OPEN_URI | sqlite3.OPEN_NOMUTEX

// openEngine opens the main database through the named, already-registered
// VFS, with openFlags set explicitly at open time.
func openEngine(vfsName string) (*engineConn, error) {
	uri := fmt.Sprintf("file:/db?immutable=1&vfs=%s", vfsName)
	conn, err := sqlite3.OpenFlags(uri, openFlags)
	if err != nil {
		return nil, wrap(err, uri)
	}
	return &engineConn{conn: conn}, nil
}

func (c *engineConn) close() error {
	return wrap(c.conn.Close())
}

func (c *engineConn) interrupt() {
	c.conn.Interrupt()
}

// errmsg surfaces the engine's own description of its most recent failure,
// per the sqlite-error kind's contract that the message is whatever
// errmsg produces.
func (c *engineConn) errmsg() string {
	return c.conn.Error().Error()
}
