// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"fmt"
	"iter"
	"strings"

	sqlite3 "github.com/ncruces/go-sqlite3"
)

// stmt wraps one prepared statement, owned by the session that created
// it. Reading rows after closed is set fails with ErrContextClosed,
// matching the Statement data model's scope-safety invariant. inUse marks
// a statement as mid-iteration, so a cache can tell a free statement from
// one a still-draining caller has checked out.
type stmt struct {
	raw    *sqlite3.Stmt
	cols   []string
	closed bool
	inUse  bool
}

// prepareNext prepares the first statement found in sql, returning it
// alongside the unconsumed tail so callers can drive a multi-statement
// script. An empty or whitespace-only tail ends the sequence.
func prepareNext(conn *engineConn, sql string) (*stmt, string, error) {
	raw, tail, err := conn.conn.Prepare(sql)
	if err != nil {
		return nil, "", wrap(fmt.Errorf("%w: %w", ErrSQLite, err), conn.errmsg())
	}
	if raw == nil {
		return nil, tail, nil
	}
	return &stmt{raw: raw, cols: columnNames(raw), inUse: true}, tail, nil
}

// bind binds either positional params (Name == "") in order, or named
// params looked up by BindIndex; an unknown name or unsupported value
// type fails as a sqlite-error, per the Statement Executor's binding
// contract.
func (s *stmt) bind(params []Param) error {
	for i, p := range params {
		idx := i + 1
		if p.Name != "" {
			idx = s.raw.BindIndex(p.Name)
			if idx == 0 {
				return wrap(ErrSQLite, fmt.Sprintf("unknown named parameter %q", p.Name))
			}
		}
		if err := bindValue(s.raw, idx, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func bindValue(raw *sqlite3.Stmt, idx int, v any) error {
	switch val := v.(type) {
	case nil:
		raw.BindNull(idx)
	case int:
		raw.BindInt64(idx, int64(val))
	case int32:
		raw.BindInt64(idx, int64(val))
	case int64:
		raw.BindInt64(idx, val)
	case float32:
		raw.BindFloat(idx, float64(val))
	case float64:
		raw.BindFloat(idx, val)
	case []byte:
		raw.BindBlob(idx, val)
	case string:
		raw.BindText(idx, val)
	default:
		return wrap(ErrSQLite, fmt.Sprintf("unsupported bind value type %T", v))
	}
	return nil
}

// rows drives step-by-step iteration until SQLITE_DONE or the first step
// error. Column names are already captured in s.cols at prepare time. The
// returned error func must be consulted after the sequence is drained,
// via itererr's Collect/Zip convention. s.inUse is cleared once the
// sequence function returns, whether that's a natural SQLITE_DONE/error
// exit or the caller breaking out of range early, so a cache can tell
// once iteration has genuinely ended.
func (s *stmt) rows() (iter.Seq[Row], func() error) {
	var stepErr error
	seq := func(yield func(Row) bool) {
		defer func() { s.inUse = false }()
		for {
			if s.closed {
				stepErr = ErrContextClosed
				return
			}
			hasRow := s.raw.Step()
			if !hasRow {
				if err := s.raw.Err(); err != nil {
					stepErr = wrap(fmt.Errorf("%w: %w", ErrSQLite, err))
				}
				return
			}
			row := decodeRow(s.raw, s.cols)
			if !yield(row) {
				return
			}
		}
	}
	return seq, func() error { return stepErr }
}

func columnNames(raw *sqlite3.Stmt) []string {
	n := raw.ColumnCount()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = raw.ColumnName(i)
	}
	return names
}

func decodeRow(raw *sqlite3.Stmt, cols []string) Row {
	row := make(Row, len(cols))
	for i := range cols {
		switch raw.ColumnType(i) {
		case sqlite3.INTEGER:
			row[i] = raw.ColumnInt64(i)
		case sqlite3.FLOAT:
			row[i] = raw.ColumnFloat(i)
		case sqlite3.TEXT:
			row[i] = raw.ColumnText(i)
		case sqlite3.BLOB:
			b := raw.ColumnBlob(i, nil)
			cp := make([]byte, len(b))
			copy(cp, b)
			row[i] = cp
		default:
			row[i] = nil
		}
	}
	return row
}

func (s *stmt) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return wrap(s.raw.Close())
}

// splitScript is a light pre-check used only to decide whether a script
// is entirely whitespace before handing it to Prepare, which the engine
// itself also tail-indexes; kept here to avoid an extra prepare/finalize
// round trip on trivially-empty tails.
func splitScript(sql string) bool {
	return strings.TrimSpace(sql) == ""
}
