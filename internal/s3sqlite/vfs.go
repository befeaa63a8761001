// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"log/slog"

	"github.com/ncruces/go-sqlite3/vfs"
)

// fileVFS implements vfs.VFS for exactly one session. It serves the main
// database file read-only through a rangeReader and rejects every other
// file class (journal, WAL, temp, shared-memory) so the engine never
// attempts to write anywhere.
type fileVFS struct {
	rr *rangeReader
}

func newFileVFS(rr *rangeReader) *fileVFS {
	return &fileVFS{rr: rr}
}

// Open honors only SQLITE_OPEN_MAIN_DB; every other file class fails so the
// engine never gets a journal, WAL, or temp file handle to write through.
func (v *fileVFS) Open(name string, flags vfs.OpenFlag) (vfs.File, vfs.OpenFlag, error) {
	if flags&vfs.OPEN_MAIN_DB == 0 {
		return nil, flags, vfs.CANTOPEN
	}
	return &dbFile{rr: v.rr}, flags | vfs.OPEN_READONLY, nil
}

// Delete is a no-op success: the immutable flag means the engine never
// actually issues a delete in practice, but a defensive implementation
// must not fail spuriously if it is asked to.
func (v *fileVFS) Delete(name string, syncDir bool) error {
	return nil
}

// Access always reports "does not exist" for auxiliary files, so the
// engine never probes for a journal that this VFS could not serve anyway.
func (v *fileVFS) Access(name string, flags vfs.AccessFlag) (bool, error) {
	return false, nil
}

// FullPathname is a pass-through: the engine's notion of "path" is opaque
// to a VFS whose only real file lives behind a signed URL, not a path.
func (v *fileVFS) FullPathname(name string) (string, error) {
	return name, nil
}

// dbFile implements vfs.File for the single main-database handle a session
// opens. Every mutating method fails; every read delegates to the
// rangeReader bound to the session's pinned ObjectBinding.
type dbFile struct {
	rr *rangeReader
}

// ReadAt zero-fills the tail of p and reports vfs.IOERR_SHORT_READ only
// when the rangeReader itself reported no error but simply ran out of
// object to serve (a request that reached past end-of-file), which
// SQLite tolerates during its own header probes. Any error from the
// rangeReader, including a short read the store owed us but didn't
// deliver, is a hard I/O error; it must never be papered over with
// fabricated zero bytes that get mistaken for real page data.
func (f *dbFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.rr.readAt(context.Background(), p, off)
	if err != nil {
		return n, vfs.IOERR_READ
	}
	if n < len(p) {
		clear(p[n:])
		slog.Debug("short read past end of file, zero-filled", slog.Int64("offset", off), slog.Int("got", n), slog.Int("want", len(p)))
		return n, vfs.IOERR_SHORT_READ
	}
	return n, nil
}

func (f *dbFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, vfs.READONLY
}

func (f *dbFile) Truncate(size int64) error {
	return vfs.READONLY
}

func (f *dbFile) Sync(flag vfs.SyncFlag) error {
	return vfs.IOERR_FSYNC
}

func (f *dbFile) Size() (int64, error) {
	return f.rr.size(), nil
}

// Lock, Unlock, and CheckReservedLock are no-ops: the session is opened
// with flags that keep the engine from needing genuine lock acquisition
// against a store that cannot provide one.
func (f *dbFile) Lock(lock vfs.LockLevel) error {
	return nil
}

func (f *dbFile) Unlock(lock vfs.LockLevel) error {
	return nil
}

func (f *dbFile) CheckReservedLock() (bool, error) {
	return false, nil
}

func (f *dbFile) Close() error {
	return nil
}

func (f *dbFile) SectorSize() int {
	return 512
}

func (f *dbFile) DeviceCharacteristics() vfs.DeviceCharacteristic {
	return vfs.IOCAP_IMMUTABLE
}
