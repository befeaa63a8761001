// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/michalc/sqlite-s3-query-go/internal/itererr"
)

// Session owns the whole chain of resources for one query scope: the
// bound object version, the VFS registration, the sqlite3 connection, and
// any statements prepared against it. Exactly one goroutine may use a
// Session's query primitive at a time, except Interrupt, which is safe
// from any goroutine.
type Session struct {
	mu sync.Mutex

	binding      *ObjectBinding
	rangeReader  *rangeReader
	httpClient   HTTPClient
	ownsClient   bool
	vfsName      string
	unregisterFn func()
	conn         *engineConn

	stmtCache *lru.Cache[string, *stmt]

	closed bool
}

// Options configures Open. All three providers are optional; zero values
// fall back to NewDefaultCredentialsProvider, NewDefaultHTTPClient, and a
// statement cache of 32 entries respectively.
type Options struct {
	Credentials    CredentialsProvider
	HTTPClient     HTTPClientProvider
	Region         string
	StmtCacheSize  int
}

const defaultStmtCacheSize = 32

// Open resolves the object's current version, registers a per-session
// VFS, and opens the database read-only against it. The returned Session
// must be closed by the caller; closing releases every resource acquired
// here in LIFO order, regardless of which step failed.
func Open(ctx context.Context, url string, opts Options) (_ *Session, err error) {
	if opts.StmtCacheSize <= 0 {
		opts.StmtCacheSize = defaultStmtCacheSize
	}
	if opts.Credentials == nil {
		opts.Credentials = NewDefaultCredentialsProvider()
	}

	var client HTTPClient
	ownsClient := false
	if opts.HTTPClient != nil {
		client, err = opts.HTTPClient()
	} else {
		client, err = NewDefaultHTTPClient()
		ownsClient = true
	}
	if err != nil {
		return nil, wrap(err, "build http client")
	}

	// Every step below that fails must undo everything acquired so far,
	// in LIFO order, mirroring the teardown the Session itself performs
	// on Close.
	cleanup := []func(){}
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()
	if ownsClient {
		cleanup = append(cleanup, func() { client.Close() })
	}

	sign := newSigner(opts.Credentials, opts.Region)

	binding, err := bindObject(ctx, sign, client, url)
	if err != nil {
		return nil, wrap(err, url)
	}

	rr := newRangeReader(sign, client, binding)

	vfsName, unregister, err := registerVFS(rr)
	if err != nil {
		return nil, wrap(err)
	}
	cleanup = append(cleanup, unregister)

	conn, err := openEngine(vfsName)
	if err != nil {
		return nil, wrap(err, vfsName)
	}
	cleanup = append(cleanup, func() { conn.close() })

	cache, _ := lru.NewWithEvict[string, *stmt](opts.StmtCacheSize, func(_ string, s *stmt) { s.close() })

	slog.DebugContext(ctx, "session opened", slog.String("url", url), slog.String("version", binding.VersionID), slog.String("vfs", vfsName))

	return &Session{
		binding:      binding,
		rangeReader:  rr,
		httpClient:   client,
		ownsClient:   ownsClient,
		vfsName:      vfsName,
		unregisterFn: unregister,
		conn:         conn,
		stmtCache:    cache,
	}, nil
}

// Query runs one SQL statement and returns its column names and a
// non-restartable row sequence. Iteration ends at the first step error,
// which is yielded as the last element. Once Close has run, further rows
// from a cached statement surface ErrContextClosed; a one-off statement
// prepared because the cached one was still in use is closed only when its
// own iteration ends.
func (s *Session) Query(sql string, params ...Param) ([]string, iter.Seq2[Row, error], error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, wrap(ErrContextClosed)
	}

	st, _, ephemeral, err := s.prepare(sql)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	if err := st.bind(params); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}

	rowSeq, errFn := st.rows()
	cols := st.cols

	// The lock is released before the rows are handed back; the
	// Session is still single-threaded per use, but Query itself must not
	// hold the mutex across the whole iteration or a caller who never
	// finishes draining would deadlock any later call, including Close.
	s.mu.Unlock()

	rows := itererr.Zip(rowSeq, errFn)
	if ephemeral {
		rows = closeAfterDrain(rows, st)
	}
	return cols, rows, nil
}

// closeAfterDrain wraps rows so st is closed once iteration ends, whether
// by running to completion or by the caller breaking out of range early.
// Used for a cache-miss statement prepared because the cached entry for
// the same SQL text was still mid-iteration: that one-off statement has
// nowhere else to live, so it must close itself rather than linger until
// a Close that may never come.
func closeAfterDrain(rows iter.Seq2[Row, error], st *stmt) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		defer st.close()
		for row, err := range rows {
			if !yield(row, err) {
				return
			}
		}
	}
}

// QueryScript runs a semicolon-separated script, yielding one
// (columns, rows) pair per statement in order; the next statement is
// prepared only once the caller's loop body for the previous pair returns,
// and the previous statement is closed at that point whether or not its
// rows were drained.
func (s *Session) QueryScript(sql string, paramSets ...[]Param) iter.Seq2[[]string, iter.Seq2[Row, error]] {
	return func(yield func([]string, iter.Seq2[Row, error]) bool) {
		remaining := sql
		i := 0
		for !splitScript(remaining) {
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			st, tail, err := prepareNext(s.conn, remaining)
			s.mu.Unlock()
			if err != nil || st == nil {
				return
			}
			remaining = tail

			var params []Param
			if i < len(paramSets) {
				params = paramSets[i]
			}
			i++

			if err := st.bind(params); err != nil {
				st.close()
				return
			}

			rowSeq, errFn := st.rows()
			cols := st.cols
			if !yield(cols, itererr.Zip(rowSeq, errFn)) {
				st.close()
				return
			}
			st.close()
		}
	}
}

// prepare returns a cached statement for sql if one exists, is not
// closed, and is not still mid-iteration from an earlier Query call on
// the same SQL text; the returned statement is otherwise freshly
// prepared. A cached entry that is still draining is left untouched in
// the cache (it owns its own state machine and must finish on its own),
// and the fresh statement prepared in its place is returned with
// ephemeral set so the caller closes it once done rather than caching
// it, which would otherwise displace the statement still in use from the
// cache.
// Statements that are part of a multi-statement script bypass the cache
// entirely via prepareNext.
func (s *Session) prepare(sql string) (st *stmt, tail string, ephemeral bool, err error) {
	if cached, ok := s.stmtCache.Get(sql); ok && !cached.closed {
		if !cached.inUse {
			cached.inUse = true
			cached.raw.Reset()
			return cached, "", false, nil
		}
		st, _, err := prepareNext(s.conn, sql)
		if err != nil {
			return nil, "", false, err
		}
		return st, "", true, nil
	}
	st, tail, err = prepareNext(s.conn, sql)
	if err != nil {
		return nil, "", false, err
	}
	s.stmtCache.Add(sql, st)
	return st, tail, false, nil
}

// Interrupt aborts the current step from any goroutine, unlike every
// other Session method. Implementers targeting long-running queries call
// this to cancel a query that never reaches SQLITE_DONE on its own.
func (s *Session) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.conn.interrupt()
	}
}

// Close releases every resource acquired by Open, in LIFO order,
// regardless of failure in any individual step: statements first, then
// the engine handle, then the VFS registration, then the HTTP client if
// this Session created it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.stmtCache.Purge()

	var firstErr error
	if err := s.conn.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.unregisterFn()
	if s.ownsClient {
		if err := s.httpClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
