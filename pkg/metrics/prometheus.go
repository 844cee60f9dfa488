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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Factory creates prometheus metrics and registers them with a registerer.
// The zero value registers with the default registerer.
type Factory struct {
	Registerer prometheus.Registerer
}

func (f Factory) register(c prometheus.Collector) {
	reg := f.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(c)
}

// NewCounter creates and registers a counter.
func (f Factory) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	f.register(c)
	return c
}

// NewCounterVec creates and registers a counter vector.
func (f Factory) NewCounterVec(
	opts prometheus.CounterOpts,
	labelNames []string,
) *prometheus.CounterVec {

	c := prometheus.NewCounterVec(opts, labelNames)
	f.register(c)
	return c
}

// NewGauge creates and registers a gauge.
func (f Factory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	f.register(g)
	return g
}

// NewPromCounter wraps a prometheus counter vector as a Counter for the given
// label values. Returns nil if cv is nil.
func NewPromCounter(cv *prometheus.CounterVec, labelValues ...string) Counter {
	if cv == nil {
		return nil
	}
	return cv.WithLabelValues(labelValues...)
}
