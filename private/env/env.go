// Copyright 2018 ETH Zurich
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

// Package env contains common configuration and initialization code for the
// history service.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/pkg/private/util"
	"github.com/enclavetrust/avrhistory/private/config"
)

const (
	// ShutdownGraceInterval is the time applications wait after issuing a
	// clean shutdown signal, before forcefully tearing down the application.
	ShutdownGraceInterval = 5 * time.Second

	// HandlerTimeout is the time after which the http handler gives up on a request and
	// returns an error instead.
	HandlerTimeout = time.Minute
)

var _ config.Config = (*General)(nil)

type General struct {
	// ID is the service identifier used in logs and metrics.
	ID string `toml:"id,omitempty"`
	// History is the bootstrap history file (.json or .toml). If empty, the
	// history is loaded from the history database.
	History string `toml:"history,omitempty"`
	// ReloadInterval is the period of unconditional history reloads. Zero
	// disables periodic reloads; SIGHUP always triggers a reload.
	ReloadInterval util.DurWrap `toml:"reload_interval,omitempty"`
}

func (cfg *General) InitDefaults() {}

func (cfg *General) Validate() error {
	if cfg.ID == "" {
		return serrors.New("no service id specified")
	}
	if cfg.ReloadInterval.Duration < 0 {
		return serrors.New("reload_interval must not be negative",
			"reload_interval", cfg.ReloadInterval)
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, fmt.Sprintf(generalSample, ctx[config.ID]))
}

func (cfg *General) ConfigName() string {
	return "general"
}

var _ config.Config = (*Metrics)(nil)

type Metrics struct {
	config.NoDefaulter
	config.NoValidator
	// Prometheus contains the address to export prometheus metrics on. If
	// not set, metrics are not exported.
	Prometheus string `toml:"prometheus,omitempty"`
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// Handler returns the handler exposing the metrics of gatherer.
func (cfg *Metrics) Handler(reg prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	return promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{Timeout: HandlerTimeout}),
	)
}

// ServePrometheus serves the default prometheus registry under /metrics
// until ctx is done.
func (cfg *Metrics) ServePrometheus(ctx context.Context) error {
	if cfg.Prometheus == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", cfg.Handler(prometheus.DefaultRegisterer, prometheus.DefaultGatherer))
	log.Info("Exporting prometheus metrics", "addr", cfg.Prometheus)

	server := &http.Server{Addr: cfg.Prometheus, Handler: mux}
	go func() {
		defer log.HandlePanic()
		<-ctx.Done()
		server.Close()
	}()
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving prometheus metrics", err)
	}
	return nil
}

// SIGHUPChannel returns a channel that fires on every SIGHUP until ctx is
// done. Signals arriving while a notification is pending are coalesced.
func SIGHUPChannel(ctx context.Context) <-chan struct{} {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	return forward(ctx, sig, func() { signal.Stop(sig) })
}

func forward(ctx context.Context, sig <-chan os.Signal, stop func()) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer log.HandlePanic()
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				log.Info("Received SIGHUP, reloading history")
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
