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

package api

import (
	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
)

// Window is a validity window. A missing last valid index means the window
// is open-ended.
type Window struct {
	FirstValidIndex uint64  `json:"first_valid_index" yaml:"first_valid_index"`
	LastValidIndex  *uint64 `json:"last_valid_index" yaml:"last_valid_index"`
}

// Summary is the response to a history listing.
type Summary struct {
	Records int           `json:"records" yaml:"records"`
	Nodes   []NodeSummary `json:"nodes" yaml:"nodes"`
}

// NodeSummary lists the windows of a single node.
type NodeSummary struct {
	NodeIdentity string   `json:"node_identity" yaml:"node_identity"`
	Windows      []Window `json:"windows" yaml:"windows"`
}

// NodeHistory is the full history of a single node.
type NodeHistory struct {
	NodeIdentity string          `json:"node_identity" yaml:"node_identity"`
	Records      []HistoryRecord `json:"records" yaml:"records"`
}

// HistoryRecord is a window with its optional report.
type HistoryRecord struct {
	Window `yaml:",inline"`
	Report *avrhistory.ReportShadow `json:"report" yaml:"report"`
}

// LookupResult is the response to a lookup.
type LookupResult struct {
	NodeIdentity string                   `json:"node_identity" yaml:"node_identity"`
	Index        uint64                   `json:"index" yaml:"index"`
	Coverage     string                   `json:"coverage" yaml:"coverage"`
	Window       *Window                  `json:"window,omitempty" yaml:"window,omitempty"`
	Report       *avrhistory.ReportShadow `json:"report,omitempty" yaml:"report,omitempty"`
}

func newWindow(w avrhistory.Window) Window {
	return Window{FirstValidIndex: w.First, LastValidIndex: w.Last}
}

// NewLookupResult renders the lookup result of node at index.
func NewLookupResult(node string, index uint64, res avrhistory.LookupResult) LookupResult {
	r := LookupResult{
		NodeIdentity: node,
		Index:        index,
		Coverage:     res.Coverage.String(),
		Report:       avrhistory.EncodeOptionalReport(res.Report),
	}
	if res.Coverage != avrhistory.NoRecord {
		w := newWindow(res.Window)
		r.Window = &w
	}
	return r
}
