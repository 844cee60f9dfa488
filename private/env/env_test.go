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

package env

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclavetrust/avrhistory/pkg/private/xtest"
)

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	stopped := make(chan struct{})
	out := forward(ctx, sig, func() { close(stopped) })

	xtest.AssertReadDoesNotReturnBefore(t, out, 50*time.Millisecond)
	sig <- syscall.SIGHUP
	xtest.AssertReadReturnsBefore(t, out, time.Second)

	cancel()
	xtest.AssertReadReturnsBefore(t, stopped, time.Second)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "avrhistory_test_total"})
	reg.MustRegister(c)
	c.Inc()

	var cfg Metrics
	rr := httptest.NewRecorder()
	cfg.Handler(reg, reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "avrhistory_test_total 1")
}

func TestServePrometheusDisabled(t *testing.T) {
	var cfg Metrics
	assert.NoError(t, cfg.ServePrometheus(context.Background()))
}
