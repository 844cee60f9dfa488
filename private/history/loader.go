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

// Package history holds the attestation history of a running service and
// reloads it on demand.
//
// Readers never block: the current registry is published through an atomic
// pointer and replaced wholesale after a new registry has been loaded and
// validated off the hot path. A failed reload keeps the previous registry.
package history

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/metrics"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

//go:generate mockgen -destination mock_history/mock.go -package mock_history . Source,Validator

// Source produces a complete registry.
type Source interface {
	Load(ctx context.Context) (*avrhistory.Registry, error)
}

// FileSource loads the registry from a bootstrap file.
type FileSource string

// Load loads the bootstrap file.
func (f FileSource) Load(context.Context) (*avrhistory.Registry, error) {
	return avrhistory.Load(string(f))
}

// Validator is used to validate that the history update is permissible.
type Validator interface {
	// Validate checks whether the history update is permissible. For the
	// initial load old is nil.
	Validate(new, old *avrhistory.Registry) error
}

// LoaderMetrics are the metrics of a Loader. Nil metrics are ignored.
type LoaderMetrics struct {
	// ReadErrors counts reloads that failed to read or parse the source.
	ReadErrors metrics.Counter
	// ValidationErrors counts reloads rejected by the validator.
	ValidationErrors metrics.Counter
	// Updates counts successful reloads.
	Updates metrics.Counter
	// Records is the number of records in the current registry.
	Records metrics.Gauge
}

// LoaderCfg is the configuration of a Loader.
type LoaderCfg struct {
	// File is the bootstrap file. It is ignored if Source is set.
	File string
	// Source overrides File as the origin of the history.
	Source Source
	// Reload triggers a reload on every receive.
	Reload <-chan struct{}
	// Validator validates every update, including the initial load.
	Validator Validator
	Metrics   LoaderMetrics
}

// Loader holds the current registry and reloads it whenever Reload fires.
type Loader struct {
	cfg     LoaderCfg
	current atomic.Pointer[avrhistory.Registry]

	// mtx serializes reloads and protects the subscriptions.
	mtx           sync.Mutex
	source        Source
	nextID        int
	subscriptions map[int]chan struct{}
}

// NewLoader creates a loader and performs the initial load. It fails if the
// initial load fails.
func NewLoader(cfg LoaderCfg) (*Loader, error) {
	source := cfg.Source
	if source == nil {
		if cfg.File == "" {
			return nil, serrors.New("either file or source must be set")
		}
		source = FileSource(cfg.File)
	}
	l := &Loader{
		cfg:           cfg,
		source:        source,
		subscriptions: make(map[int]chan struct{}),
	}
	reg, err := l.load(context.Background(), nil)
	if err != nil {
		return nil, serrors.Wrap("loading initial history", err)
	}
	l.current.Store(reg)
	metrics.GaugeSet(cfg.Metrics.Records, float64(reg.Len()))
	return l, nil
}

// Run reloads the history whenever the reload channel fires. It returns nil
// once ctx is done.
func (l *Loader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.cfg.Reload:
			if err := l.Reload(ctx); err != nil {
				log.FromCtx(ctx).Error("Failed to reload history", "err", err)
			}
		}
	}
}

// Reload loads and validates a new registry and, on success, replaces the
// current one and notifies all subscribers.
func (l *Loader) Reload(ctx context.Context) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	old := l.current.Load()
	reg, err := l.load(ctx, old)
	if err != nil {
		return err
	}
	l.current.Store(reg)
	metrics.CounterInc(l.cfg.Metrics.Updates)
	metrics.GaugeSet(l.cfg.Metrics.Records, float64(reg.Len()))
	log.FromCtx(ctx).Info("History reloaded", "records", reg.Len(), "nodes", len(reg.Nodes()))
	for _, ch := range l.subscriptions {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (l *Loader) load(ctx context.Context, old *avrhistory.Registry) (*avrhistory.Registry, error) {
	reg, err := l.source.Load(ctx)
	if err != nil {
		metrics.CounterInc(l.cfg.Metrics.ReadErrors)
		return nil, serrors.Wrap("reading history", err)
	}
	if l.cfg.Validator != nil {
		if err := l.cfg.Validator.Validate(reg, old); err != nil {
			metrics.CounterInc(l.cfg.Metrics.ValidationErrors)
			return nil, serrors.Wrap("validating history update", err)
		}
	}
	return reg, nil
}

// Registry returns the current registry.
func (l *Loader) Registry() *avrhistory.Registry {
	return l.current.Load()
}

// Lookup answers a lookup against the current registry.
func (l *Loader) Lookup(node string, index uint64) avrhistory.LookupResult {
	return l.current.Load().Lookup(node, index)
}

// Subscribe returns a subscription that is notified after every successful
// reload. Notifications are coalesced if the subscriber lags behind.
func (l *Loader) Subscribe() *Subscription {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan struct{}, 1)
	l.subscriptions[id] = ch
	return &Subscription{Updates: ch, l: l, id: id}
}

func (l *Loader) unsubscribe(id int) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	delete(l.subscriptions, id)
}

// Subscription is a subscription to history updates.
type Subscription struct {
	// Updates receives a value after every successful reload.
	Updates <-chan struct{}
	l       *Loader
	id      int
}

// Close removes the subscription. Updates is not closed.
func (s *Subscription) Close() {
	s.l.unsubscribe(s.id)
}

// ReloadTask adapts a Loader to periodic.Task so that the history can be
// reloaded on a fixed interval.
type ReloadTask struct {
	Loader *Loader
}

// Name returns the task name.
func (t ReloadTask) Name() string {
	return "history_reloader"
}

// Run reloads the history once.
func (t ReloadTask) Run(ctx context.Context) {
	if err := t.Loader.Reload(ctx); err != nil {
		log.FromCtx(ctx).Error("Failed to reload history", "err", err)
	}
}
