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

// Package config describes the configuration of the history service.
package config

import (
	"io"

	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/config"
	"github.com/enclavetrust/avrhistory/private/env"
	api "github.com/enclavetrust/avrhistory/private/mgmtapi"
	"github.com/enclavetrust/avrhistory/private/storage"
)

const idSample = "avrhistory-1"

var _ config.Config = (*Config)(nil)

// Config is the history service configuration.
type Config struct {
	General env.General      `toml:"general,omitempty"`
	Logging log.Config       `toml:"log,omitempty"`
	Metrics env.Metrics      `toml:"metrics,omitempty"`
	API     api.Config       `toml:"api,omitempty"`
	DB      storage.DBConfig `toml:"db,omitempty"`
}

// Load reads, defaults and validates the config file.
func Load(file string) (Config, error) {
	var cfg Config
	if err := config.LoadFile(file, &cfg); err != nil {
		return Config{}, err
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, serrors.Wrap("validating config", err, "file", file)
	}
	return cfg, nil
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.DB,
	)
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.DB,
	)
}

// Sample generates a sample config file for the history service.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.DB,
	)
}
