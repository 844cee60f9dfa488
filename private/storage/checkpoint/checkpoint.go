// Copyright 2020 Anapaya Systems
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

// Package checkpoint provides a periodic task that checkpoints the
// write-ahead log of a database.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/metrics"
	"github.com/enclavetrust/avrhistory/private/periodic"
)

// Func checkpoints a database and returns the number of checkpointed frames.
type Func func(ctx context.Context) (int, error)

var _ periodic.Task = (*Checkpointer)(nil)

// Checkpointer is a periodic.Task implementation that checkpoints a
// database.
type Checkpointer struct {
	checkpoint Func
	subsystem  string
	metrics    Metrics
}

// Metrics contains the metrics for a checkpointer.
type Metrics struct {
	// ErrorsTotal reports the total number of failed checkpoints.
	ErrorsTotal metrics.Counter
	// RunsTotal reports the total number of successful runs.
	RunsTotal metrics.Counter
	// FramesTotal reports the total number of checkpointed frames.
	FramesTotal metrics.Counter
}

// New returns a new checkpoint task.
func New(checkpoint Func, subsystem string, metrics Metrics) *Checkpointer {
	return &Checkpointer{
		checkpoint: checkpoint,
		subsystem:  subsystem,
		metrics:    metrics,
	}
}

// Name returns the tasks name.
func (c *Checkpointer) Name() string {
	return fmt.Sprintf("%s_checkpointer", c.subsystem)
}

// Run checkpoints the database once.
func (c *Checkpointer) Run(ctx context.Context) {
	frames, err := c.checkpoint(ctx)
	logger := log.FromCtx(ctx)
	if err != nil {
		logger.Error("Failed to checkpoint", "subsystem", c.subsystem, "err", err)
		metrics.CounterInc(c.metrics.ErrorsTotal)
		return
	}
	if frames > 0 {
		logger.Debug("Checkpointed", "subsystem", c.subsystem, "frames", frames)
		metrics.CounterAdd(c.metrics.FramesTotal, float64(frames))
	}
	metrics.CounterInc(c.metrics.RunsTotal)
}
