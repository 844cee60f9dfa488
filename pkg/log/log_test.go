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

package log_test

import (
	"context"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/enclavetrust/avrhistory/pkg/log"
)

func TestParseLevel(t *testing.T) {
	for name, tc := range map[string]struct {
		input     string
		expected  log.Level
		assertErr assert.ErrorAssertionFunc
	}{
		"debug":        {input: "debug", expected: log.DebugLevel, assertErr: assert.NoError},
		"upper case":   {input: "INFO", expected: log.InfoLevel, assertErr: assert.NoError},
		"error":        {input: "error", expected: log.ErrorLevel, assertErr: assert.NoError},
		"crit unknown": {input: "crit", assertErr: assert.Error},
	} {
		t.Run(name, func(t *testing.T) {
			lvl, err := log.ParseLevel(tc.input)
			tc.assertErr(t, err)
			if err == nil {
				assert.Equal(t, tc.expected, lvl)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	var cfg log.Config
	cfg.InitDefaults()
	assert.Equal(t, log.DefaultConsoleLevel, cfg.Console.Level)
	assert.Equal(t, log.DefaultConsoleFormat, cfg.Console.Format)
	assert.NoError(t, cfg.Validate())

	cfg.Console.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestFromCtx(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := log.FromZap(zap.New(core))

	t.Run("logger in context", func(t *testing.T) {
		ctx := log.CtxWith(context.Background(), base)
		_, l := log.WithLabels(ctx, "node", "A")
		l.Info("lookup", "index", 15)
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, "lookup", entries[0].Message)
		assert.Equal(t, map[string]any{"node": "A", "index": int64(15)},
			entries[0].ContextMap())
	})
	t.Run("span attached", func(t *testing.T) {
		tracer := mocktracer.New()
		span := tracer.StartSpan("lookup")
		ctx := opentracing.ContextWithSpan(log.CtxWith(context.Background(), base), span)
		log.FromCtx(ctx).Debug("resolved", "coverage", "report")
		span.Finish()

		require.Len(t, logs.TakeAll(), 1)
		finished := tracer.FinishedSpans()
		require.Len(t, finished, 1)
		require.Len(t, finished[0].Logs(), 1)
	})
	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // nil context is explicitly supported.
		assert.NotNil(t, log.FromCtx(nil))
	})
}
