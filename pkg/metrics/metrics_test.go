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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/enclavetrust/avrhistory/pkg/metrics"
)

func TestNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.CounterInc(nil)
		metrics.CounterAdd(nil, 3)
		metrics.GaugeSet(nil, 1)
	})
}

func TestFakes(t *testing.T) {
	c := metrics.NewTestCounter()
	metrics.CounterInc(c)
	metrics.CounterAdd(c, 2)
	assert.Equal(t, float64(3), metrics.CounterValue(c))
	assert.Panics(t, func() { c.Add(-1) })

	g := metrics.NewTestGauge()
	metrics.GaugeSet(g, 10)
	g.Add(-4)
	assert.Equal(t, float64(6), metrics.GaugeValue(g))
}

func TestFactory(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := metrics.Factory{Registerer: reg}
	cv := f.NewCounterVec(prometheus.CounterOpts{
		Name: "lookups_total",
		Help: "Total lookups.",
	}, []string{"coverage"})

	metrics.CounterInc(metrics.NewPromCounter(cv, "report"))
	metrics.CounterInc(metrics.NewPromCounter(cv, "report"))
	assert.Equal(t, float64(2), testutil.ToFloat64(cv.WithLabelValues("report")))
	assert.Nil(t, metrics.NewPromCounter(nil))
}
