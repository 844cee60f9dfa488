// Copyright 2018 ETH Zurich
// Copyright 2019 ETH Zurich, Anapaya Systems
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

package log

import (
	"context"

	"github.com/opentracing/opentracing-go"
)

type loggerContextKey string

const loggerKey loggerContextKey = "logger"

// CtxWith returns a new context, based on ctx, that embeds logger. The
// logger can be recovered using FromCtx.
func CtxWith(ctx context.Context, logger Logger) context.Context {
	if ctx == nil {
		panic("nil context")
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx returns the logger embedded in ctx if one exists, or the root
// logger otherwise. If ctx carries a tracing span, log entries are also
// attached to the span.
func FromCtx(ctx context.Context) Logger {
	if ctx == nil {
		return Root()
	}
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		if _, isSpan := l.(Span); isSpan {
			return l
		}
		return attachSpan(ctx, l)
	}
	return attachSpan(ctx, Root())
}

// WithLabels returns a context whose logger carries the additional labels.
// For convenience it also returns the logger itself.
func WithLabels(ctx context.Context, labels ...any) (context.Context, Logger) {
	logger := FromCtx(ctx).New(labels...)
	return CtxWith(ctx, logger), logger
}

func attachSpan(ctx context.Context, l Logger) Logger {
	span := opentracing.SpanFromContext(ctx)
	if span == nil {
		return l
	}
	return Span{Logger: l, Span: span}
}
