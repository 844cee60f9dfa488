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

// Package log is a thin wrapper around zap. Log context is passed as
// alternating key/value pairs:
//
//	log.Info("history reloaded", "records", n, "file", path)
//
// Call Setup once at startup. Before that, the package logs nothing.
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

// Level is the log level.
type Level zapcore.Level

const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// ParseLevel parses a level name (debug|info|error).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return 0, serrors.New("unknown log level", "level", s)
	}
}

func (l Level) String() string {
	return zapcore.Level(l).String()
}

// Logger is the logging interface used throughout the code base.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

type logger struct {
	logger *zap.Logger
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) Logger {
	return &logger{logger: l}
}

// Root returns the root logger. It is a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

// WithOptions returns a copy of the logger with the zap options applied.
func (l *logger) WithOptions(opts ...zap.Option) Logger {
	return &logger{logger: l.logger.WithOptions(opts...)}
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) {
	zap.L().Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) {
	zap.L().Info(msg, convertCtx(ctx)...)
}

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) {
	zap.L().Error(msg, convertCtx(ctx)...)
}

// Flush writes buffered log entries.
func Flush() {
	_ = zap.L().Sync()
}

// HandlePanic catches panics, logs them and re-panics. Use it as the first
// deferred call in every goroutine.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.String("stack", string(debug.Stack())))
		Flush()
		panic(msg)
	}
}

// Setup configures the root logger according to cfg.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := ParseLevel(cfg.Console.Level)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Console.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.Level(lvl))
	var opts []zap.Option
	if !cfg.Console.DisableCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	zap.ReplaceGlobals(zap.New(core, opts...))
	return nil
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}
