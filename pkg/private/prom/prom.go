// Copyright 2017 ETH Zurich
// Copyright 2018 ETH Zurich, Anapaya Systems
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

// Package prom contains some utility functions for dealing with prometheus
// metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the namespace of all service metrics.
const Namespace = "avrhistory"

// Common label values.
const (
	// LabelResult is the label for result classifications.
	LabelResult = "result"
	// LabelCoverage is the label for the coverage of a history lookup.
	LabelCoverage = "coverage"
)

// Common result values.
const (
	// Success is no error.
	Success = "ok_success"
	// ErrRead is used for errors reading or parsing a source.
	ErrRead = "err_read"
	// ErrValidate is used for validation related errors.
	ErrValidate = "err_validate"
)

// ExportElementID exports the element ID as configured in the config file.
func ExportElementID(id string) {
	promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "elem_id",
			Help:      "The element ID from the config file",
		},
		[]string{"cfg"},
	).WithLabelValues(id).Set(1)
}

// SafeRegister registers c and returns the registered collector. If c was
// already registered the already registered collector is returned. In case of
// any other error this method panics (as MustRegister).
func SafeRegister(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// NewCounterVec creates a new prometheus counter vec that is registered with
// the default registry.
func NewCounterVec(namespace, subsystem, name, help string,
	labelNames []string) *prometheus.CounterVec {

	opts := prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
	return SafeRegister(prometheus.NewCounterVec(opts, labelNames)).(*prometheus.CounterVec)
}

// NewGauge creates a new prometheus gauge that is registered with the default
// registry.
func NewGauge(namespace, subsystem, name, help string) prometheus.Gauge {
	opts := prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
	return SafeRegister(prometheus.NewGauge(opts)).(prometheus.Gauge)
}
