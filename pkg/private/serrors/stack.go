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

package serrors

import (
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap/zapcore"
)

const maxDepth = 32

// Frame is a program counter of a single stack frame.
type Frame uintptr

func (f Frame) pc() uintptr { return uintptr(f) - 1 }

// MarshalText renders the frame as "function file:line".
func (f Frame) MarshalText() ([]byte, error) {
	fn := runtime.FuncForPC(f.pc())
	if fn == nil {
		return []byte("unknown"), nil
	}
	file, line := fn.FileLine(f.pc())
	return []byte(fmt.Sprintf("%s %s:%d", fn.Name(), file, line)), nil
}

// StackTrace is a stack of frames, innermost first.
type StackTrace []Frame

func (st StackTrace) String() string {
	lines := make([]string, 0, len(st))
	for _, f := range st {
		t, _ := f.MarshalText()
		lines = append(lines, string(t))
	}
	return strings.Join(lines, "\n")
}

type stack []uintptr

func (s *stack) StackTrace() StackTrace {
	f := make([]Frame, len(*s))
	for i := range f {
		f[i] = Frame((*s)[i])
	}
	return f
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (s *stack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, pc := range *s {
		t, err := Frame(pc).MarshalText()
		if err != nil {
			return err
		}
		enc.AppendByteString(t)
	}
	return nil
}

func callers() *stack {
	var pcs [maxDepth]uintptr
	// Skip runtime.Callers, callers, mkErrorInfo and the public constructor.
	n := runtime.Callers(4, pcs[:])
	var st stack = pcs[0:n]
	return &st
}
