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

// Package storage provides factories for the application storage backends.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/config"
	"github.com/enclavetrust/avrhistory/private/periodic"
	"github.com/enclavetrust/avrhistory/private/storage/checkpoint"
	"github.com/enclavetrust/avrhistory/private/storage/db"
	sqlitehistory "github.com/enclavetrust/avrhistory/private/storage/history/sqlite"
)

// Backend indicates the database backend type.
type Backend string

const (
	// BackendSqlite indicates an sqlite backend.
	BackendSqlite Backend = "sqlite"
	// DefaultHistoryDBPath is the default connection string of the history
	// database.
	DefaultHistoryDBPath = "/var/lib/avrhistory/history.db"
	// DefaultCheckpointInterval is the default period of WAL checkpoints.
	DefaultCheckpointInterval = 5 * time.Minute
)

// HistoryDB is a persistent attestation history store.
type HistoryDB interface {
	io.Closer
	db.LimitSetter
	InsertRecords(ctx context.Context, records []avrhistory.Record) (int, error)
	ReplaceHistory(ctx context.Context, reg *avrhistory.Registry) error
	Load(ctx context.Context) (*avrhistory.Registry, error)
	Lookup(ctx context.Context, node string, index uint64) (avrhistory.LookupResult, error)
}

var _ (config.Config) = (*DBConfig)(nil)

// DBConfig is the configuration for the connection to a database.
type DBConfig struct {
	Connection   string `toml:"connection,omitempty"`
	MaxOpenConns int    `toml:"max_open_conns,omitempty"`
	MaxIdleConns int    `toml:"max_idle_conns,omitempty"`
	CacheSize    int    `toml:"cache_size,omitempty"`
}

// SetConnLimits sets the maximum number of open and idle connections based on the configuration.
// Limits of 0 mean the Go default will be used.
func SetConnLimits(d db.LimitSetter, c DBConfig) {
	if c.MaxOpenConns != 0 {
		d.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns != 0 {
		d.SetMaxIdleConns(c.MaxIdleConns)
	}
}

func (cfg *DBConfig) InitDefaults() {
	if cfg.Connection == "" {
		cfg.Connection = DefaultHistoryDBPath
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = sqlitehistory.DefaultCacheSize
	}
}

func (cfg *DBConfig) Validate() error {
	if cfg.CacheSize < 0 {
		return serrors.New("cache_size must not be negative", "cache_size", cfg.CacheSize)
	}
	return nil
}

// Sample writes a config sample to the writer.
func (cfg *DBConfig) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, sample)
}

// ConfigName is the key in the toml file.
func (cfg *DBConfig) ConfigName() string {
	return "db"
}

// NewHistoryStorage opens the history database. If checkpointInterval is
// positive, WAL checkpoints run in the background until the database is
// closed.
func NewHistoryStorage(c DBConfig, checkpointInterval time.Duration) (HistoryDB, error) {
	log.Info("Connecting HistoryDB", "backend", BackendSqlite, "connection", c.Connection)
	hdb, err := sqlitehistory.New(c.Connection, nil, c.CacheSize)
	if err != nil {
		return nil, err
	}
	SetConnLimits(hdb, c)
	if checkpointInterval <= 0 {
		return hdb, nil
	}
	runner := periodic.Start(
		checkpoint.New(hdb.Checkpoint, "history_db", checkpoint.Metrics{}),
		checkpointInterval,
		checkpointInterval,
	)
	return historyDBWithCheckpointer{HistoryDB: hdb, runner: runner}, nil
}

// historyDBWithCheckpointer stops both the database and the checkpoint task
// on Close.
type historyDBWithCheckpointer struct {
	HistoryDB
	runner *periodic.Runner
}

func (h historyDBWithCheckpointer) Close() error {
	h.runner.Kill()
	return h.HistoryDB.Close()
}

const sample = `
# The connection string of the history database. (default ` + DefaultHistoryDBPath + `)
connection = "` + DefaultHistoryDBPath + `"

# The maximum number of open read connections to the database. 0 selects a
# limit based on the number of CPUs. (default 0)
max_open_conns = 0

# The maximum number of idle read connections. 0 keeps the Go default. (default 0)
max_idle_conns = 0

# The number of lookups cached in front of the database. (default 1024)
cache_size = 1024
`
