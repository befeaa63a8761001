// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

// ObjectBinding pins a session to one immutable object version: its
// version ID and byte length, as observed by a single HEAD at Open time.
// Every subsequent range read targets exactly this version, never "latest".
type ObjectBinding struct {
	URL       string
	VersionID string
	Size      int64
}

// Row is one result row: values positioned to line up with the column
// name slice returned alongside it, in the prepared statement's result
// order. Values are whatever the engine's column-decode produced: nil,
// int64, float64, string, or []byte. A map would collapse two result
// columns sharing a name (e.g. a self-join's duplicated column); a
// position-aligned slice can't.
type Row []any

// Param is a positional or named bind parameter. Name is empty for
// positional params bound by order.
type Param struct {
	Name  string
	Value any
}
