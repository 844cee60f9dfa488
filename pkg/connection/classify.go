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

package connection

import (
	"errors"
)

// Class is the retry class of an error.
type Class uint8

const (
	// Fatal errors must not be retried.
	Fatal Class = iota
	// Retryable errors may succeed on a later attempt.
	Retryable
)

func (c Class) String() string {
	if c == Retryable {
		return "retryable"
	}
	return "fatal"
}

// Classify returns the retry class of err. Errors that are not an *Error are
// classified as if passed through FromRPC. A nil error is Fatal.
func Classify(err error) Class {
	if err == nil {
		return Fatal
	}
	var ce *Error
	if !errors.As(err, &ce) {
		ce = FromRPC(err)
	}
	switch ce.Kind {
	case RPC:
		return Retryable
	case Attestation:
		if ce.Retry {
			return Retryable
		}
		return Fatal
	default:
		return Fatal
	}
}

// ShouldRetry reports whether Classify(err) is Retryable.
func ShouldRetry(err error) bool {
	return Classify(err) == Retryable
}
