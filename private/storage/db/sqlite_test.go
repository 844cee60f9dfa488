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

package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclavetrust/avrhistory/private/storage/db"
)

const testSchema = `CREATE TABLE kv (k TEXT PRIMARY KEY, v INTEGER NOT NULL);`

func TestNewSqliteRejectsAmbiguousMemory(t *testing.T) {
	_, err := db.NewSqlite(":memory:", nil)
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.NewSqlite(path, nil)
	require.NoError(t, err)
	require.NoError(t, d.Setup(testSchema, 1))
	// A second setup with the same version is a no-op.
	require.NoError(t, d.Setup(testSchema, 1))

	_, err = d.Full.Exec(`INSERT INTO kv (k, v) VALUES ('a', 1)`)
	require.NoError(t, err)
	var v int
	require.NoError(t, d.ReadOnly.QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v))
	assert.Equal(t, 1, v)
	require.NoError(t, d.Close())

	d, err = db.NewSqlite(path, nil)
	require.NoError(t, err)
	defer d.Close()
	assert.Error(t, d.Setup(testSchema, 2))
}

func TestInMemory(t *testing.T) {
	d, err := db.NewSqlite("file:"+t.Name(), &db.SqliteConfig{InMemory: true})
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Setup(testSchema, 1))
	_, err = d.Full.Exec(`INSERT INTO kv (k, v) VALUES ('a', 7)`)
	require.NoError(t, err)
	var v int
	require.NoError(t, d.ReadOnly.QueryRow(`SELECT v FROM kv`).Scan(&v))
	assert.Equal(t, 7, v)
}

func TestCheckpoint(t *testing.T) {
	d, err := db.NewSqlite(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Setup(testSchema, 1))
	_, err = d.Full.Exec(`INSERT INTO kv (k, v) VALUES ('a', 1)`)
	require.NoError(t, err)
	stats, err := d.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Busy)
	assert.Equal(t, stats.LogFrames, stats.Checkpointed)
}
