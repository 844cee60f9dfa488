// Copyright 2018 ETH Zurich
// Copyright 2020 ETH Zurich, Anapaya Systems
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

// Package xtest contains helpers for tests.
package xtest

import (
	"encoding/hex"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// UpdateGoldenFiles registers the '-update' flag for the test.
//
// Golden file tests check this flag to decide whether the golden files
// should be rewritten. Register it as a package global variable:
//
//	var update = xtest.UpdateGoldenFiles()
//
// and run:
//
//	go test ./path/to/package -update
func UpdateGoldenFiles() *bool {
	return flag.Bool("update", false, "set to regenerate the golden files")
}

// MustWriteFile writes b to name in dir and returns the full path. The test
// fails on error.
func MustWriteFile(t testing.TB, dir, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// MustReadFromFile reads testdata/baseName and returns the raw content. The
// test fails on error.
func MustReadFromFile(t testing.TB, baseName string) []byte {
	t.Helper()
	b, err := os.ReadFile(ExpandPath(baseName))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// ExpandPath returns testdata/file.
func ExpandPath(file string) string {
	return filepath.Join("testdata", file)
}

// MustParseHexString decodes s, ignoring whitespace. It panics if s is not
// valid hex.
func MustParseHexString(s string) []byte {
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		panic(err)
	}
	return decoded
}

// Uint64 returns a pointer to v.
func Uint64(v uint64) *uint64 {
	return &v
}

// AssertReadReturnsBefore fails the test if the first read from ch doesn't
// happen before timeout.
func AssertReadReturnsBefore(t testing.TB, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("goroutine took too long to finish")
	}
}

// AssertReadDoesNotReturnBefore fails the test if the first read from ch
// happens before timeout.
func AssertReadDoesNotReturnBefore(t testing.TB, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("goroutine finished too quickly")
	case <-time.After(timeout):
	}
}
