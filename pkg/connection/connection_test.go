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

package connection_test

import (
	"errors"
	"io"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/connection"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

type attestErr struct {
	retry bool
}

func (e attestErr) Error() string     { return "quote verification failed" }
func (e attestErr) ShouldRetry() bool { return e.retry }

func TestClassify(t *testing.T) {
	testCases := map[string]struct {
		Err      error
		Expected connection.Class
	}{
		"nil": {
			Err:      nil,
			Expected: connection.Fatal,
		},
		"grpc status": {
			Err:      status.Error(codes.Unavailable, "peer down"),
			Expected: connection.Retryable,
		},
		"wrapped grpc status": {
			Err: serrors.Wrap("fetching blocks",
				status.Error(codes.DeadlineExceeded, "slow")),
			Expected: connection.Retryable,
		},
		"connect error": {
			Err:      connect.NewError(connect.CodeUnavailable, io.EOF),
			Expected: connection.Retryable,
		},
		"retryable attestation": {
			Err:      connection.FromAttestation(attestErr{retry: true}),
			Expected: connection.Retryable,
		},
		"fatal attestation": {
			Err:      connection.FromAttestation(attestErr{retry: false}),
			Expected: connection.Fatal,
		},
		"not found": {
			Err:      connection.New(connection.NotFound, nil),
			Expected: connection.Fatal,
		},
		"request too large": {
			Err:      connection.ErrRequestTooLarge,
			Expected: connection.Fatal,
		},
		"conversion": {
			Err:      connection.New(connection.Conversion, errors.New("bad length")),
			Expected: connection.Fatal,
		},
		"cipher": {
			Err:      connection.New(connection.Cipher, errors.New("mac mismatch")),
			Expected: connection.Fatal,
		},
		"transaction validation": {
			Err:      connection.New(connection.TransactionValidation, errors.New("tombstone")),
			Expected: connection.Fatal,
		},
		"plain error": {
			Err:      errors.New("boom"),
			Expected: connection.Fatal,
		},
		"wrapped classified error": {
			Err:      serrors.Wrap("proposing tx", connection.New(connection.RPC, io.EOF)),
			Expected: connection.Retryable,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, connection.Classify(tc.Err))
			assert.Equal(t, tc.Expected == connection.Retryable, connection.ShouldRetry(tc.Err))
		})
	}
}

func TestFromRPC(t *testing.T) {
	assert.Nil(t, connection.FromRPC(nil))

	grpcErr := status.Error(codes.Unavailable, "peer down")
	err := connection.FromRPC(grpcErr)
	assert.Equal(t, connection.RPC, err.Kind)
	assert.ErrorIs(t, err, connection.ErrRPC)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	connectErr := connect.NewError(connect.CodeNotFound, errors.New("no such block"))
	err = connection.FromRPC(connectErr)
	assert.Equal(t, connection.RPC, err.Kind)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	err = connection.FromRPC(io.EOF)
	assert.Equal(t, connection.Other, err.Kind)
	assert.ErrorIs(t, err, io.EOF)

	classified := connection.New(connection.Cipher, io.EOF)
	assert.Same(t, classified, connection.FromRPC(classified))
}

func TestErrorIs(t *testing.T) {
	err := connection.New(connection.NotFound, io.EOF)
	assert.ErrorIs(t, err, connection.ErrNotFound)
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, connection.ErrRPC)
	assert.Equal(t, "not found: EOF", err.Error())
	assert.Equal(t, "attestation failure", connection.ErrAttestation.Error())
}

func TestCheckHistory(t *testing.T) {
	reg, err := avrhistory.New([]avrhistory.Record{
		{
			NodeIdentity:    "peer1",
			FirstValidIndex: 10,
			LastValidIndex:  func() *uint64 { v := uint64(20); return &v }(),
			Report:          &avrhistory.Report{Body: "ok"},
		},
		{NodeIdentity: "peer1", FirstValidIndex: 21},
	})
	require.NoError(t, err)

	assert.NoError(t, connection.CheckHistory(reg.Lookup("peer1", 15), "peer1", 15))
	for _, index := range []uint64{5, 25} {
		err := connection.CheckHistory(reg.Lookup("peer1", index), "peer1", index)
		assert.ErrorIs(t, err, connection.ErrAttestation)
		assert.Equal(t, connection.Fatal, connection.Classify(err))
	}
}
