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

package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/metrics"
	"github.com/enclavetrust/avrhistory/pkg/private/xtest"
	"github.com/enclavetrust/avrhistory/private/mgmtapi/history/api"
)

type staticProvider struct {
	reg *avrhistory.Registry
}

func (p staticProvider) Registry() *avrhistory.Registry {
	return p.reg
}

func testRegistry(t *testing.T) *avrhistory.Registry {
	reg, err := avrhistory.New([]avrhistory.Record{
		{
			NodeIdentity:    "peer1",
			FirstValidIndex: 10,
			LastValidIndex:  xtest.Uint64(20),
			Report: &avrhistory.Report{
				Signature:        []byte{0xde, 0xad},
				CertificateChain: [][]byte{{0x30, 0x82}},
				Body:             "{}",
			},
		},
		{NodeIdentity: "peer1", FirstValidIndex: 21},
		{NodeIdentity: "peer2/b", FirstValidIndex: 0, LastValidIndex: xtest.Uint64(99)},
	})
	require.NoError(t, err)
	return reg
}

func TestAPI(t *testing.T) {
	testCases := map[string]struct {
		RequestURL  string
		Status      int
		ContentType string
		Body        string
	}{
		"summary": {
			RequestURL:  "/history",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"records": 3,
				"nodes": [
					{"node_identity": "peer1", "windows": [
						{"first_valid_index": 10, "last_valid_index": 20},
						{"first_valid_index": 21, "last_valid_index": null}
					]},
					{"node_identity": "peer2/b", "windows": [
						{"first_valid_index": 0, "last_valid_index": 99}
					]}
				]
			}`,
		},
		"node history": {
			RequestURL:  "/history/peer1",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"node_identity": "peer1",
				"records": [
					{
						"first_valid_index": 10,
						"last_valid_index": 20,
						"report": {
							"signature": "dead",
							"certificate_chain": ["3082"],
							"body": "{}"
						}
					},
					{"first_valid_index": 21, "last_valid_index": null, "report": null}
				]
			}`,
		},
		"unknown node": {
			RequestURL:  "/history/peer3",
			Status:      http.StatusNotFound,
			ContentType: "application/problem+json",
			Body: `{
				"detail": "peer3",
				"status": 404,
				"title": "no history for node",
				"type": "not found"
			}`,
		},
		"report present": {
			RequestURL:  "/history/peer1/15",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"node_identity": "peer1",
				"index": 15,
				"coverage": "report_present",
				"window": {"first_valid_index": 10, "last_valid_index": 20},
				"report": {
					"signature": "dead",
					"certificate_chain": ["3082"],
					"body": "{}"
				}
			}`,
		},
		"explicit no report": {
			RequestURL:  "/history/peer1/25",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"node_identity": "peer1",
				"index": 25,
				"coverage": "explicit_no_report",
				"window": {"first_valid_index": 21, "last_valid_index": null}
			}`,
		},
		"no record": {
			RequestURL:  "/history/peer1/5",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"node_identity": "peer1",
				"index": 5,
				"coverage": "no_record"
			}`,
		},
		"escaped node": {
			RequestURL:  "/history/peer2%2Fb/99",
			Status:      http.StatusOK,
			ContentType: "application/json",
			Body: `{
				"node_identity": "peer2/b",
				"index": 99,
				"coverage": "explicit_no_report",
				"window": {"first_valid_index": 0, "last_valid_index": 99}
			}`,
		},
		"invalid index": {
			RequestURL:  "/history/peer1/-1",
			Status:      http.StatusBadRequest,
			ContentType: "application/problem+json",
			Body: `{
				"detail": "strconv.ParseUint: parsing \"-1\": invalid syntax",
				"status": 400,
				"title": "invalid index",
				"type": "bad request"
			}`,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := &api.Server{History: staticProvider{reg: testRegistry(t)}}
			req, err := http.NewRequest(http.MethodGet, tc.RequestURL, nil)
			require.NoError(t, err)
			rr := httptest.NewRecorder()
			api.Handler(s).ServeHTTP(rr, req)

			assert.Equal(t, tc.Status, rr.Code)
			assert.Equal(t, tc.ContentType, rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.Body, rr.Body.String())
		})
	}
}

func TestLookupMetrics(t *testing.T) {
	counters := map[string]*metrics.TestCounter{
		avrhistory.NoRecord.String():         metrics.NewTestCounter(),
		avrhistory.ExplicitNoReport.String(): metrics.NewTestCounter(),
		avrhistory.ReportPresent.String():    metrics.NewTestCounter(),
	}
	s := &api.Server{
		History: staticProvider{reg: testRegistry(t)},
		Lookups: func(coverage string) metrics.Counter {
			return counters[coverage]
		},
	}
	h := api.Handler(s)
	for _, u := range []string{"/history/peer1/15", "/history/peer1/16", "/history/peer1/30",
		"/history/peer9/1"} {

		req := httptest.NewRequest(http.MethodGet, u, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 2.0, metrics.CounterValue(counters["report_present"]))
	assert.Equal(t, 1.0, metrics.CounterValue(counters["explicit_no_report"]))
	assert.Equal(t, 1.0, metrics.CounterValue(counters["no_record"]))
}

func TestEmptyRegistry(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := &api.Server{History: staticProvider{}}
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rr := httptest.NewRecorder()
	api.Handler(s).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"records": 0, "nodes": []}`, rr.Body.String())
}
