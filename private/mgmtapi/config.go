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

package mgmtapi

import (
	"io"
	"net"

	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/config"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the management API.
type Config struct {
	config.NoDefaulter
	// Addr is the address the API is served on. An empty address disables
	// the API.
	Addr string `toml:"addr,omitempty"`
}

// Validate checks that Addr, if set, is a host:port pair.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return serrors.Wrap("invalid api address", err, "addr", c.Addr)
	}
	return nil
}

// Sample writes the sample config to dst.
func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, apiSample)
}

// ConfigName returns the name of the config block.
func (c *Config) ConfigName() string {
	return "api"
}

const apiSample = `
# The address to expose the API on (host:port or ip:port or :port).
# If not set, the API is not exposed. (default "")
addr = "127.0.0.1:30455"
`
