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

package mgmtapi_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/enclavetrust/avrhistory/private/mgmtapi"
	apitest "github.com/enclavetrust/avrhistory/private/mgmtapi/mgmtapitest"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg api.Config
	cfg.Sample(&sample, nil, nil)
	apitest.InitConfig(&cfg)
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	assert.NoError(t, err)
	apitest.CheckConfig(t, &cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	testCases := map[string]struct {
		Addr      string
		assertErr assert.ErrorAssertionFunc
	}{
		"disabled":  {Addr: "", assertErr: assert.NoError},
		"port only": {Addr: ":8080", assertErr: assert.NoError},
		"ipv6":      {Addr: "[::1]:8080", assertErr: assert.NoError},
		"no port":   {Addr: "localhost", assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := api.Config{Addr: tc.Addr}
			tc.assertErr(t, cfg.Validate())
		})
	}
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	api.ErrorResponse(rec, api.Problem{
		Detail: api.StringRef("index must be a number"),
		Status: 400,
		Title:  "invalid index",
		Type:   api.StringRef(api.BadRequest),
	})
	require.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"detail": "index must be a number",
		"status": 400,
		"title": "invalid index",
		"type": "bad request"
	}`, rec.Body.String())
}
