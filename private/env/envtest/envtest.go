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

// Package envtest contains helpers to test configs embedding env configs.
package envtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/enclavetrust/avrhistory/private/env"
)

func InitTestGeneral(cfg *env.General) {
	cfg.History = "bad"
	cfg.ReloadInterval.Duration = 42 * time.Hour
}

func CheckTestGeneral(t *testing.T, cfg *env.General, id string) {
	assert.Equal(t, id, cfg.ID)
	assert.Equal(t, "/etc/avrhistory/history.toml", cfg.History)
	assert.Equal(t, time.Minute, cfg.ReloadInterval.Duration)
}

func InitTestMetrics(cfg *env.Metrics) {
	cfg.Prometheus = "bad"
}

func CheckTestMetrics(t *testing.T, cfg *env.Metrics) {
	assert.Empty(t, cfg.Prometheus)
}
