// Copyright 2019 Anapaya Systems
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

package db_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/private/storage/db"
)

func TestErrors(t *testing.T) {
	last := uint64(20)
	overlap := &avrhistory.OverlapError{
		Node: "peer1",
		A:    avrhistory.Window{First: 10, Last: &last},
		B:    avrhistory.Window{First: 15},
	}
	testCases := map[string]struct {
		err       error
		sentinel  error
		cause     error
		expectMsg string
	}{
		"invalid input": {
			err: db.NewInputDataError("history invariants violated", overlap,
				"node", "peer1"),
			sentinel: db.ErrInvalidInputData,
			cause:    overlap,
			expectMsg: "db: input data invalid " +
				"{node=peer1; op=history invariants violated}: " + overlap.Error(),
		},
		"corrupt report": {
			err:       db.NewDataError("decoding report", nil, "first_valid_index", 10),
			sentinel:  db.ErrDataInvalid,
			expectMsg: "db: db data invalid {first_valid_index=10; op=decoding report}",
		},
		"read": {
			err:       db.NewReadError("selecting history", nil),
			sentinel:  db.ErrReadFailed,
			expectMsg: "db: read failed {op=selecting history}",
		},
		"write": {
			err:       db.NewWriteError("deleting history", nil),
			sentinel:  db.ErrWriteFailed,
			expectMsg: "db: write failed {op=deleting history}",
		},
		"tx": {
			err:       db.NewTxError("commit", nil),
			sentinel:  db.ErrTx,
			expectMsg: "db: transaction error {op=commit}",
		},
	}
	sentinels := []error{db.ErrInvalidInputData, db.ErrDataInvalid, db.ErrReadFailed,
		db.ErrWriteFailed, db.ErrTx}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expectMsg, tc.err.Error())
			for _, s := range sentinels {
				assert.Equal(t, s == tc.sentinel, errors.Is(tc.err, s), s)
			}
			if tc.cause != nil {
				assert.ErrorIs(t, tc.err, tc.cause)
			}
			assert.Equal(t, tc.cause == overlap, errors.Is(tc.err, avrhistory.ErrOverlap))
		})
	}
}
