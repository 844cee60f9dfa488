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

// Package sqlite stores an attestation history in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/storage/db"
)

// DefaultCacheSize is the number of lookups cached if no size is configured.
const DefaultCacheSize = 1024

type lookupKey struct {
	node  string
	index uint64
}

// reportBlob is the stored form of a report.
type reportBlob struct {
	Signature        []byte   `cbor:"1,keyasint"`
	CertificateChain [][]byte `cbor:"2,keyasint"`
	Body             string   `cbor:"3,keyasint"`
}

// Backend is an SQLite history store. Lookups are answered from an adaptive
// replacement cache in front of the database. All methods are safe for
// concurrent use.
type Backend struct {
	db    *db.Sqlite
	cache *arc.ARCCache[lookupKey, avrhistory.LookupResult]

	// mu guards gen. gen is bumped after every committed write and a lookup
	// result is only cached if no write completed while it was read.
	mu  sync.Mutex
	gen uint64
}

// New returns a new SQLite backend opening a database at the given path. If
// no database exists a new database is created. If the schema version of the
// stored database is different from the one in schema.go, an error is
// returned. A cacheSize of 0 selects DefaultCacheSize.
func New(path string, cfg *db.SqliteConfig, cacheSize int) (*Backend, error) {
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := arc.NewARC[lookupKey, avrhistory.LookupResult](cacheSize)
	if err != nil {
		return nil, serrors.Wrap("creating lookup cache", err, "size", cacheSize)
	}
	sqlite, err := db.NewSqlite(path, cfg)
	if err != nil {
		return nil, serrors.Wrap("opening history db", err, "path", path)
	}
	if err := sqlite.Setup(Schema, SchemaVersion); err != nil {
		sqlite.Close()
		return nil, serrors.Wrap("setting up history db", err, "path", path)
	}
	return &Backend{db: sqlite, cache: cache}, nil
}

// SetMaxOpenConns sets the maximum number of open read connections.
func (b *Backend) SetMaxOpenConns(maxOpenConns int) {
	if r, ok := b.db.ReadOnly.(db.LimitSetter); ok {
		r.SetMaxOpenConns(maxOpenConns)
	}
}

// SetMaxIdleConns sets the maximum number of idle read connections.
func (b *Backend) SetMaxIdleConns(maxIdleConns int) {
	if r, ok := b.db.ReadOnly.(db.LimitSetter); ok {
		r.SetMaxIdleConns(maxIdleConns)
	}
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Checkpoint runs a passive WAL checkpoint and returns the number of
// checkpointed frames.
func (b *Backend) Checkpoint(ctx context.Context) (int, error) {
	stats, err := db.Checkpoint(ctx, b.db.Full, "PASSIVE")
	if err != nil {
		return 0, db.NewWriteError("checkpoint", err)
	}
	return stats.Checkpointed, nil
}

// InsertRecords adds records to the stored history. The combined history
// must satisfy the history invariants, otherwise nothing is inserted and the
// violation is returned joined with db.ErrInvalidInputData. It returns the
// number of inserted records.
func (b *Backend) InsertRecords(ctx context.Context, records []avrhistory.Record) (int, error) {
	for _, rec := range records {
		if err := checkIndexRange(rec); err != nil {
			return 0, err
		}
	}
	tx, err := b.db.Full.BeginTx(ctx, nil)
	if err != nil {
		return 0, db.NewTxError("create tx", err)
	}
	defer tx.Rollback()

	existing, err := readRecords(ctx, tx)
	if err != nil {
		return 0, err
	}
	if _, err := avrhistory.New(append(existing, records...)); err != nil {
		return 0, db.NewInputDataError("history invariants violated", err)
	}
	if err := insert(ctx, tx, records); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, db.NewTxError("commit", err)
	}
	b.invalidate()
	return len(records), nil
}

// ReplaceHistory atomically replaces the stored history with reg.
func (b *Backend) ReplaceHistory(ctx context.Context, reg *avrhistory.Registry) error {
	records := reg.Records()
	for _, rec := range records {
		if err := checkIndexRange(rec); err != nil {
			return err
		}
	}
	tx, err := b.db.Full.BeginTx(ctx, nil)
	if err != nil {
		return db.NewTxError("create tx", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return db.NewWriteError("deleting history", err)
	}
	if err := insert(ctx, tx, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return db.NewTxError("commit", err)
	}
	b.invalidate()
	return nil
}

// Load reads the full stored history into a registry.
func (b *Backend) Load(ctx context.Context) (*avrhistory.Registry, error) {
	records, err := readRecords(ctx, b.db.ReadOnly)
	if err != nil {
		return nil, err
	}
	reg, err := avrhistory.New(records)
	if err != nil {
		return nil, db.NewDataError("stored history invalid", err)
	}
	return reg, nil
}

// Lookup answers a lookup for node at index.
func (b *Backend) Lookup(ctx context.Context, node string, index uint64) (
	avrhistory.LookupResult, error) {

	key := lookupKey{node: node, index: index}
	if res, ok := b.cache.Get(key); ok {
		return cloneResult(res), nil
	}
	gen := b.generation()
	res, err := b.lookup(ctx, node, index)
	if err != nil {
		return avrhistory.LookupResult{}, err
	}
	b.cacheResult(key, res, gen)
	return cloneResult(res), nil
}

func (b *Backend) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// cacheResult caches res unless a write completed since gen was observed.
func (b *Backend) cacheResult(key lookupKey, res avrhistory.LookupResult, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		return
	}
	b.cache.Add(key, res)
}

func (b *Backend) invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.cache.Purge()
}

func (b *Backend) lookup(ctx context.Context, node string, index uint64) (
	avrhistory.LookupResult, error) {

	// Stored indices never exceed math.MaxInt64, so for larger indices the
	// last window of the node decides.
	bound := int64(min(index, math.MaxInt64))
	query := `
		SELECT first_valid_index, last_valid_index, report
		FROM history
		WHERE node_identity = ? AND first_valid_index <= ?
		ORDER BY first_valid_index DESC
		LIMIT 1`
	var (
		first  int64
		last   sql.NullInt64
		report []byte
	)
	err := b.db.ReadOnly.QueryRowContext(ctx, query, node, bound).
		Scan(&first, &last, &report)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return avrhistory.LookupResult{}, nil
	case err != nil:
		return avrhistory.LookupResult{}, db.NewReadError("looking up history", err,
			"node", node, "index", index)
	}
	rec := avrhistory.Record{NodeIdentity: node, FirstValidIndex: uint64(first)}
	if last.Valid {
		l := uint64(last.Int64)
		rec.LastValidIndex = &l
	}
	if !rec.Window().Contains(index) {
		return avrhistory.LookupResult{}, nil
	}
	if report == nil {
		return avrhistory.LookupResult{
			Coverage: avrhistory.ExplicitNoReport,
			Window:   rec.Window(),
		}, nil
	}
	r, err := decodeReport(report)
	if err != nil {
		return avrhistory.LookupResult{}, db.NewDataError("decoding report", err,
			"node", node, "first_valid_index", first)
	}
	return avrhistory.LookupResult{
		Coverage: avrhistory.ReportPresent,
		Window:   rec.Window(),
		Report:   &r,
	}, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readRecords(ctx context.Context, q querier) ([]avrhistory.Record, error) {
	query := `
		SELECT node_identity, first_valid_index, last_valid_index, report
		FROM history
		ORDER BY node_identity, first_valid_index`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, db.NewReadError("selecting history", err)
	}
	defer rows.Close()
	var records []avrhistory.Record
	for rows.Next() {
		var (
			rec    avrhistory.Record
			first  int64
			last   sql.NullInt64
			report []byte
		)
		if err := rows.Scan(&rec.NodeIdentity, &first, &last, &report); err != nil {
			return nil, db.NewReadError("scanning history", err)
		}
		rec.FirstValidIndex = uint64(first)
		if last.Valid {
			l := uint64(last.Int64)
			rec.LastValidIndex = &l
		}
		if report != nil {
			r, err := decodeReport(report)
			if err != nil {
				return nil, db.NewDataError("decoding report", err,
					"node", rec.NodeIdentity, "first_valid_index", first)
			}
			rec.Report = &r
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, db.NewReadError("iterating history", err)
	}
	return records, nil
}

func insert(ctx context.Context, tx *sql.Tx, records []avrhistory.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (node_identity, first_valid_index, last_valid_index, report)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return db.NewWriteError("preparing insert", err)
	}
	defer stmt.Close()
	for _, rec := range records {
		var last sql.NullInt64
		if rec.LastValidIndex != nil {
			last = sql.NullInt64{Int64: int64(*rec.LastValidIndex), Valid: true}
		}
		var report []byte
		if rec.Report != nil {
			if report, err = encodeReport(*rec.Report); err != nil {
				return db.NewInputDataError("encoding report", err,
					"node", rec.NodeIdentity)
			}
		}
		_, err := stmt.ExecContext(ctx, rec.NodeIdentity, int64(rec.FirstValidIndex),
			last, report)
		if err != nil {
			return db.NewWriteError("inserting record", err,
				"node", rec.NodeIdentity, "first_valid_index", rec.FirstValidIndex)
		}
	}
	return nil
}

func checkIndexRange(rec avrhistory.Record) error {
	if rec.FirstValidIndex > math.MaxInt64 ||
		(rec.LastValidIndex != nil && *rec.LastValidIndex > math.MaxInt64) {

		return db.NewInputDataError("index exceeds storable range", nil,
			"node", rec.NodeIdentity, "window", rec.Window())
	}
	return nil
}

func encodeReport(r avrhistory.Report) ([]byte, error) {
	return cbor.Marshal(reportBlob{
		Signature:        r.Signature,
		CertificateChain: r.CertificateChain,
		Body:             r.Body,
	})
}

func decodeReport(raw []byte) (avrhistory.Report, error) {
	var blob reportBlob
	if err := cbor.Unmarshal(raw, &blob); err != nil {
		return avrhistory.Report{}, err
	}
	return avrhistory.Report{
		Signature:        blob.Signature,
		CertificateChain: blob.CertificateChain,
		Body:             blob.Body,
	}, nil
}

func cloneResult(res avrhistory.LookupResult) avrhistory.LookupResult {
	if res.Report != nil {
		r := res.Report.Clone()
		res.Report = &r
	}
	return res
}
