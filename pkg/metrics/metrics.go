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

// Package metrics defines small metric interfaces so that components can be
// instrumented without depending on prometheus directly. A nil metric is
// valid and records nothing.
package metrics

// Counter describes a metric that accumulates values monotonically.
type Counter interface {
	Add(delta float64)
}

// Gauge describes a metric that takes specific values over time.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
}

// CounterInc increases c by 1. It is a no-op if c is nil.
func CounterInc(c Counter) {
	if c != nil {
		c.Add(1)
	}
}

// CounterAdd increases c by v. It is a no-op if c is nil.
func CounterAdd(c Counter, v float64) {
	if c != nil {
		c.Add(v)
	}
}

// GaugeSet sets g to v. It is a no-op if g is nil.
func GaugeSet(g Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}
