// Copyright 2019 Anapaya Systems
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

package db

import (
	"errors"

	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

// Sentinel errors of the history database. Errors returned by the storage
// layer are joined with exactly one of them.
var (
	// ErrInvalidInputData indicates records that cannot be stored, e.g.
	// because they would break the history invariants.
	ErrInvalidInputData = errors.New("db: input data invalid")
	// ErrDataInvalid indicates the stored history is corrupt.
	ErrDataInvalid = errors.New("db: db data invalid")
	// ErrReadFailed indicates that reading from the DB failed.
	ErrReadFailed = errors.New("db: read failed")
	// ErrWriteFailed indicates that writing to the DB failed.
	ErrWriteFailed = errors.New("db: write failed")
	// ErrTx indicates a transaction error.
	ErrTx = errors.New("db: transaction error")
)

func NewTxError(op string, err error, logCtx ...any) error {
	return newError(ErrTx, op, err, logCtx)
}

func NewInputDataError(op string, err error, logCtx ...any) error {
	return newError(ErrInvalidInputData, op, err, logCtx)
}

func NewDataError(op string, err error, logCtx ...any) error {
	return newError(ErrDataInvalid, op, err, logCtx)
}

func NewReadError(op string, err error, logCtx ...any) error {
	return newError(ErrReadFailed, op, err, logCtx)
}

func NewWriteError(op string, err error, logCtx ...any) error {
	return newError(ErrWriteFailed, op, err, logCtx)
}

func newError(kind error, op string, cause error, logCtx []any) error {
	return serrors.JoinNoStack(kind, cause, append([]any{"op", op}, logCtx...)...)
}
