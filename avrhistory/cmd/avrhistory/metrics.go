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

package main

import (
	"github.com/enclavetrust/avrhistory/pkg/metrics"
	"github.com/enclavetrust/avrhistory/pkg/private/prom"
	"github.com/enclavetrust/avrhistory/private/history"
	"github.com/enclavetrust/avrhistory/private/periodic"
)

func loaderMetrics() history.LoaderMetrics {
	updates := prom.NewCounterVec(prom.Namespace, "",
		"history_updates_total",
		"The total number of history updates.",
		[]string{prom.LabelResult},
	)
	return history.LoaderMetrics{
		ReadErrors:       metrics.NewPromCounter(updates, prom.ErrRead),
		ValidationErrors: metrics.NewPromCounter(updates, prom.ErrValidate),
		Updates:          metrics.NewPromCounter(updates, prom.Success),
		Records: prom.NewGauge(prom.Namespace, "",
			"history_records",
			"The number of records in the current history.",
		),
	}
}

func lookupMetrics() func(coverage string) metrics.Counter {
	lookups := prom.NewCounterVec(prom.Namespace, "api",
		"lookups_total",
		"The total number of history lookups by coverage.",
		[]string{prom.LabelCoverage},
	)
	return func(coverage string) metrics.Counter {
		return metrics.NewPromCounter(lookups, coverage)
	}
}

func reloaderMetrics() *periodic.Metrics {
	const subsystem = "history_reloader"
	events := prom.NewCounterVec(prom.Namespace, subsystem,
		"events_total",
		"The total number of events of the periodic history reloader.",
		[]string{"event_type"},
	)
	return &periodic.Metrics{
		Events: func(event string) metrics.Counter {
			return metrics.NewPromCounter(events, event)
		},
		Period: prom.NewGauge(prom.Namespace, subsystem,
			"period_seconds", "The period of the reloader."),
		Runtime: prom.NewGauge(prom.Namespace, subsystem,
			"runtime_seconds", "The duration of the last reload."),
		StartTime: prom.NewGauge(prom.Namespace, subsystem,
			"start_time_seconds", "The start time of the reloader."),
	}
}
