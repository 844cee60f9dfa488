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
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

// Validate checks the history invariants on records, which must be sorted by
// node identity and first valid index. It returns the first violation found:
// an *InvalidRangeError for a window that ends before it starts, an
// *OverlapError for two windows of the same node that share an index, or
// ErrUnsorted if the records are out of order.
func Validate(records []Record) error {
	for i, rec := range records {
		if i > 0 && records[i-1].Compare(rec) > 0 {
			return serrors.JoinNoStack(ErrUnsorted, nil,
				"position", i,
				"node", rec.NodeIdentity,
				"first_valid_index", rec.FirstValidIndex,
			)
		}
		if !rec.Window().Valid() {
			return &InvalidRangeError{
				Node:  rec.NodeIdentity,
				First: rec.FirstValidIndex,
				Last:  *rec.LastValidIndex,
			}
		}
		if i == 0 {
			continue
		}
		prev := records[i-1]
		if prev.NodeIdentity != rec.NodeIdentity {
			continue
		}
		// Sorted input: prev starts at or before rec.
		if prev.LastValidIndex == nil || *prev.LastValidIndex >= rec.FirstValidIndex {
			return &OverlapError{
				Node: rec.NodeIdentity,
				A:    prev.Window(),
				B:    rec.Window(),
			}
		}
	}
	return nil
}
