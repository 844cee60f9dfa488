// Copyright 2023 SCION Association
// Copyright 2026 The avrhistory Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !sqlite_mattn

package db

import (
	"net/url"

	_ "modernc.org/sqlite" // sqlite driver
)

// addPragmas sets the connection parameters in the dialect of
// modernc.org/sqlite.
func addPragmas(q url.Values) {
	// By default, SQLite starts transactions in DEFERRED mode and upgrades
	// them to write transactions in flight. An upgrade on a locked database
	// returns SQLITE_BUSY immediately, ignoring busy_timeout. Starting with
	// BEGIN IMMEDIATE makes SQLite respect busy_timeout.
	q.Add("_txlock", "immediate")
	// In WAL mode readers do not block writers and a writer does not block
	// readers.
	q.Add("_pragma", "journal_mode(WAL)")
	// Milliseconds.
	q.Add("_pragma", "busy_timeout(1000)")
	// WAL mode is safe from corruption with synchronous=NORMAL.
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(1)")
}

func driverName() string {
	return "sqlite"
}
