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
	"cmp"
	"fmt"
	"strings"
)

// Window is an inclusive range of block indices. A nil Last means the
// window is open-ended.
type Window struct {
	First uint64
	Last  *uint64
}

// OpenEnded reports whether the window has no upper bound.
func (w Window) OpenEnded() bool {
	return w.Last == nil
}

// Valid reports whether the upper bound, if any, is not below the lower
// bound.
func (w Window) Valid() bool {
	return w.Last == nil || *w.Last >= w.First
}

// Contains reports whether index lies within the window.
func (w Window) Contains(index uint64) bool {
	if index < w.First {
		return false
	}
	return w.Last == nil || index <= *w.Last
}

// Overlaps reports whether w and o share at least one index. Both windows
// must be valid.
func (w Window) Overlaps(o Window) bool {
	if o.First < w.First {
		w, o = o, w
	}
	return w.Last == nil || *w.Last >= o.First
}

// Equal compares the bounds of both windows.
func (w Window) Equal(o Window) bool {
	if w.First != o.First || (w.Last == nil) != (o.Last == nil) {
		return false
	}
	return w.Last == nil || *w.Last == *o.Last
}

func (w Window) String() string {
	if w.Last == nil {
		return fmt.Sprintf("[%d, ∞)", w.First)
	}
	return fmt.Sprintf("[%d, %d]", w.First, *w.Last)
}

// Record states that during its window the node was backed by Report, or,
// if Report is nil, that the node was known to have no valid report.
type Record struct {
	NodeIdentity    string
	FirstValidIndex uint64
	// LastValidIndex is inclusive. Nil means the record is valid for all
	// indices from FirstValidIndex on.
	LastValidIndex *uint64
	Report         *Report
}

// Window returns the validity window of the record.
func (r Record) Window() Window {
	return Window{First: r.FirstValidIndex, Last: copyIndex(r.LastValidIndex)}
}

// Compare orders records by node identity, then by first valid index.
func (r Record) Compare(o Record) int {
	if c := strings.Compare(r.NodeIdentity, o.NodeIdentity); c != 0 {
		return c
	}
	return cmp.Compare(r.FirstValidIndex, o.FirstValidIndex)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	c.LastValidIndex = copyIndex(r.LastValidIndex)
	if r.Report != nil {
		report := r.Report.Clone()
		c.Report = &report
	}
	return c
}

// Equal reports whether both records describe the same window and report.
func (r Record) Equal(o Record) bool {
	if r.NodeIdentity != o.NodeIdentity || !r.Window().Equal(o.Window()) {
		return false
	}
	if r.Report == nil || o.Report == nil {
		return r.Report == nil && o.Report == nil
	}
	return r.Report.Equal(*o.Report)
}

func copyIndex(i *uint64) *uint64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
