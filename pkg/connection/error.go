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

// Package connection classifies the errors of remote calls made to peer
// nodes, and decides which of them are worth retrying.
//
// Classification is by a closed set of kinds. RPC failures are retryable,
// attestation failures carry their retry class from the point where they
// were created and everything else is fatal.
package connection

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/grpc/status"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

// Kind is the category of a connection error.
type Kind uint8

const (
	// RequestTooLarge indicates that the requested range was too large.
	RequestTooLarge Kind = iota
	// NotFound indicates that the requested item does not exist.
	NotFound
	// Conversion indicates that a wire message could not be converted.
	Conversion
	// RPC indicates a transport level failure of the remote call.
	RPC
	// Cipher indicates an encryption or decryption failure.
	Cipher
	// Attestation indicates that the peer could not be attested.
	Attestation
	// TransactionValidation indicates that the peer rejected a transaction.
	TransactionValidation
	// Other is any other failure.
	Other
)

func (k Kind) String() string {
	switch k {
	case RequestTooLarge:
		return "requested range too large"
	case NotFound:
		return "not found"
	case Conversion:
		return "conversion failure"
	case RPC:
		return "rpc failure"
	case Cipher:
		return "encryption/decryption failure"
	case Attestation:
		return "attestation failure"
	case TransactionValidation:
		return "transaction validation failure"
	case Other:
		return "other error"
	default:
		return fmt.Sprintf("unknown kind %d", uint8(k))
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrRequestTooLarge       = &Error{Kind: RequestTooLarge}
	ErrNotFound              = &Error{Kind: NotFound}
	ErrConversion            = &Error{Kind: Conversion}
	ErrRPC                   = &Error{Kind: RPC}
	ErrCipher                = &Error{Kind: Cipher}
	ErrAttestation           = &Error{Kind: Attestation}
	ErrTransactionValidation = &Error{Kind: TransactionValidation}
	ErrOther                 = &Error{Kind: Other}
)

// Error is a classified connection error.
type Error struct {
	Kind  Kind
	Cause error
	// Retry is the retry class of an Attestation error. It is ignored for all
	// other kinds.
	Retry bool
}

// New returns an error of the given kind. Use FromAttestation for
// attestation errors.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Cause == nil && t.Kind == e.Kind
}

// AttestationError is an attestation failure that knows whether the attempt
// should be retried.
type AttestationError interface {
	error
	ShouldRetry() bool
}

// FromAttestation classifies an attestation failure. The retry class is
// taken from err once, here.
func FromAttestation(err AttestationError) *Error {
	return &Error{Kind: Attestation, Cause: err, Retry: err.ShouldRetry()}
}

// FromRPC classifies the error of a remote call. gRPC status errors and
// Connect errors are RPC errors; anything else is Other. It returns nil for
// a nil error.
func FromRPC(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	if isRPCError(err) {
		return New(RPC, err)
	}
	return New(Other, err)
}

func isRPCError(err error) bool {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return true
	}
	_, ok := status.FromError(err)
	return ok
}

// CheckHistory returns nil if res shows that node was backed by a report at
// index. Otherwise it returns a fatal attestation error.
func CheckHistory(res avrhistory.LookupResult, node string, index uint64) error {
	if res.Coverage == avrhistory.ReportPresent {
		return nil
	}
	return &Error{
		Kind: Attestation,
		Cause: serrors.New("no attestation report in history",
			"node", node,
			"index", index,
			"coverage", res.Coverage,
		),
		Retry: false,
	}
}
