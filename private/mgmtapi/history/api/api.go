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

// Package api serves the attestation history over HTTP.
package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/opentracing/opentracing-go"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/metrics"
	"github.com/enclavetrust/avrhistory/private/mgmtapi"
)

// Provider provides the current registry.
type Provider interface {
	Registry() *avrhistory.Registry
}

// Server implements the history API.
type Server struct {
	History Provider
	// Lookups returns the lookup counter for a coverage label. Optional.
	Lookups func(coverage string) metrics.Counter
}

// Handler returns the router serving the history API.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/history", s.GetHistory)
	r.Get("/history/{node}", s.GetNodeHistory)
	r.Get("/history/{node}/{index}", s.GetLookup)
	return r
}

// GetHistory lists the windows of all nodes.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	reg := s.History.Registry()
	summary := Summary{Records: reg.Len(), Nodes: []NodeSummary{}}
	for _, node := range reg.Nodes() {
		ns := NodeSummary{NodeIdentity: node}
		for _, rec := range reg.NodeHistory(node) {
			ns.Windows = append(ns.Windows, newWindow(rec.Window()))
		}
		summary.Nodes = append(summary.Nodes, ns)
	}
	mgmtapi.JSONResponse(w, summary)
}

// GetNodeHistory returns all records of a node.
func (s *Server) GetNodeHistory(w http.ResponseWriter, r *http.Request) {
	node, ok := nodeParam(w, r)
	if !ok {
		return
	}
	recs := s.History.Registry().NodeHistory(node)
	if len(recs) == 0 {
		mgmtapi.ErrorResponse(w, mgmtapi.Problem{
			Detail: mgmtapi.StringRef(node),
			Status: http.StatusNotFound,
			Title:  "no history for node",
			Type:   mgmtapi.StringRef(mgmtapi.NotFound),
		})
		return
	}
	rep := NodeHistory{NodeIdentity: node}
	for _, rec := range recs {
		rep.Records = append(rep.Records, HistoryRecord{
			Window: newWindow(rec.Window()),
			Report: avrhistory.EncodeOptionalReport(rec.Report),
		})
	}
	mgmtapi.JSONResponse(w, rep)
}

// GetLookup looks up the coverage of a node at an index.
func (s *Server) GetLookup(w http.ResponseWriter, r *http.Request) {
	node, ok := nodeParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		mgmtapi.ErrorResponse(w, mgmtapi.Problem{
			Detail: mgmtapi.StringRef(err.Error()),
			Status: http.StatusBadRequest,
			Title:  "invalid index",
			Type:   mgmtapi.StringRef(mgmtapi.BadRequest),
		})
		return
	}
	span, ctx := opentracing.StartSpanFromContext(r.Context(), "history.lookup")
	defer span.Finish()
	span.SetTag("node", node)
	span.SetTag("index", index)

	res := s.History.Registry().Lookup(node, index)
	span.SetTag("coverage", res.Coverage.String())
	log.FromCtx(ctx).Debug("History lookup",
		"node", node, "index", index, "coverage", res.Coverage)
	if s.Lookups != nil {
		metrics.CounterInc(s.Lookups(res.Coverage.String()))
	}
	mgmtapi.JSONResponse(w, NewLookupResult(node, index, res))
}

// nodeParam extracts the node identity. Clients path-escape it, so an
// identity may contain slashes.
func nodeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	node := chi.URLParam(r, "node")
	if r.URL.RawPath == "" {
		return node, true
	}
	unescaped, err := url.PathUnescape(node)
	if err != nil {
		mgmtapi.ErrorResponse(w, mgmtapi.Problem{
			Detail: mgmtapi.StringRef(err.Error()),
			Status: http.StatusBadRequest,
			Title:  "invalid node identity",
			Type:   mgmtapi.StringRef(mgmtapi.BadRequest),
		})
		return "", false
	}
	return unescaped, true
}
