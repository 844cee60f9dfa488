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

package storage_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/private/storage"
)

func TestDBConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg storage.DBConfig
	cfg.Sample(&sample, nil, nil)
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultHistoryDBPath, cfg.Connection)
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.NoError(t, cfg.Validate())
}

func TestDBConfigDefaults(t *testing.T) {
	var cfg storage.DBConfig
	cfg.InitDefaults()
	assert.Equal(t, storage.DefaultHistoryDBPath, cfg.Connection)
	assert.Equal(t, 1024, cfg.CacheSize)

	cfg.CacheSize = -1
	assert.Error(t, cfg.Validate())
}

func TestNewHistoryStorage(t *testing.T) {
	cfg := storage.DBConfig{
		Connection:   filepath.Join(t.TempDir(), "history.db"),
		MaxOpenConns: 2,
	}
	cfg.InitDefaults()
	hdb, err := storage.NewHistoryStorage(cfg, 10*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = hdb.InsertRecords(ctx, []avrhistory.Record{
		{NodeIdentity: "peer1", FirstValidIndex: 1},
	})
	require.NoError(t, err)
	res, err := hdb.Lookup(ctx, "peer1", 2)
	require.NoError(t, err)
	assert.Equal(t, avrhistory.ExplicitNoReport, res.Coverage)
	// Let the checkpointer run at least once.
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, hdb.Close())
}
