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

package avrhistory

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error returned by Load, Parse, New and Validate
// matches exactly one of them with errors.Is.
var (
	ErrIO                 = errors.New("history file unreadable")
	ErrUnrecognizedFormat = errors.New("unrecognized history file format")
	ErrParse              = errors.New("malformed history file")
	ErrInvalidHex         = errors.New("invalid hex")
	ErrOverlap            = errors.New("overlapping validity windows")
	ErrInvalidRange       = errors.New("invalid validity window")
	ErrUnsorted           = errors.New("records not sorted by node identity and first index")
)

// IOError indicates that the history file could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading history file %q: %v", e.Path, e.Err)
}

func (e *IOError) Is(target error) bool { return target == ErrIO }
func (e *IOError) Unwrap() error        { return e.Err }

// UnrecognizedFormatError indicates that the file extension is neither
// .json nor .toml.
type UnrecognizedFormatError struct {
	Path string
}

func (e *UnrecognizedFormatError) Error() string {
	return fmt.Sprintf("%s: %q (expected .json or .toml)", ErrUnrecognizedFormat, e.Path)
}

func (e *UnrecognizedFormatError) Is(target error) bool {
	return target == ErrUnrecognizedFormat
}

// ParseError indicates a syntactically or structurally malformed history
// file. Line and Column are 1-based and zero if unknown.
type ParseError struct {
	Format Format
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parsing %s history", e.Format)
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d column %d", e.Line, e.Column)
	}
	fmt.Fprintf(&b, ": %s", e.Msg)
	return b.String()
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InvalidHexError indicates a hex field that is not valid hex. Field names
// the offending field, e.g. node[2].report.certificate_chain[1].
type InvalidHexError struct {
	Field string
	Node  string
	Err   error
}

func (e *InvalidHexError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s in %s (node %q): %v", ErrInvalidHex, e.Field, e.Node, e.Err)
	}
	return fmt.Sprintf("%s in %s: %v", ErrInvalidHex, e.Field, e.Err)
}

func (e *InvalidHexError) Is(target error) bool { return target == ErrInvalidHex }
func (e *InvalidHexError) Unwrap() error        { return e.Err }

// OverlapError indicates two windows of the same node that share at least
// one index. A precedes B in sort order.
type OverlapError struct {
	Node string
	A    Window
	B    Window
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s for node %q: %s and %s", ErrOverlap, e.Node, e.A, e.B)
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// InvalidRangeError indicates a window whose last index is smaller than its
// first index.
type InvalidRangeError struct {
	Node  string
	First uint64
	Last  uint64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s for node %q: last index %d before first index %d",
		ErrInvalidRange, e.Node, e.Last, e.First)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }
