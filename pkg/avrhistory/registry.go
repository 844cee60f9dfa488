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

package avrhistory

import (
	"slices"
	"sort"
)

// Coverage describes what the registry knows about a node at an index.
type Coverage uint8

const (
	// NoRecord means no window of the node contains the index.
	NoRecord Coverage = iota
	// ExplicitNoReport means a window contains the index and states that the
	// node had no valid report.
	ExplicitNoReport
	// ReportPresent means a window contains the index and carries a report.
	ReportPresent
)

func (c Coverage) String() string {
	switch c {
	case NoRecord:
		return "no_record"
	case ExplicitNoReport:
		return "explicit_no_report"
	case ReportPresent:
		return "report_present"
	default:
		return "unknown"
	}
}

// LookupResult is the answer to a Lookup. Window is set unless Coverage is
// NoRecord, Report only if Coverage is ReportPresent.
type LookupResult struct {
	Coverage Coverage
	Window   Window
	Report   *Report
}

// Registry is an immutable, validated attestation history. It is safe for
// concurrent use. The zero value and a nil *Registry are empty registries.
type Registry struct {
	records []Record
}

// New builds a registry from records. The input is copied and sorted, then
// validated; any violation of the history invariants is returned and no
// registry is built.
func New(records []Record) (*Registry, error) {
	recs := make([]Record, 0, len(records))
	for _, r := range records {
		recs = append(recs, r.Clone())
	}
	slices.SortStableFunc(recs, Record.Compare)
	if err := Validate(recs); err != nil {
		return nil, err
	}
	return &Registry{records: recs}, nil
}

// Lookup returns the coverage of node at index. Matching is by exact node
// identity.
func (r *Registry) Lookup(node string, index uint64) LookupResult {
	if r == nil {
		return LookupResult{}
	}
	recs := r.records
	// First record ordered strictly after (node, index).
	i := sort.Search(len(recs), func(i int) bool {
		if recs[i].NodeIdentity != node {
			return recs[i].NodeIdentity > node
		}
		return recs[i].FirstValidIndex > index
	})
	if i == 0 {
		return LookupResult{}
	}
	cand := recs[i-1]
	if cand.NodeIdentity != node || !cand.Window().Contains(index) {
		return LookupResult{}
	}
	if cand.Report == nil {
		return LookupResult{Coverage: ExplicitNoReport, Window: cand.Window()}
	}
	report := cand.Report.Clone()
	return LookupResult{
		Coverage: ReportPresent,
		Window:   cand.Window(),
		Report:   &report,
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of all records in sorted order.
func (r *Registry) Records() []Record {
	if r == nil {
		return nil
	}
	return cloneRecords(r.records)
}

// Nodes returns the distinct node identities in sorted order.
func (r *Registry) Nodes() []string {
	if r == nil {
		return nil
	}
	var nodes []string
	for _, rec := range r.records {
		if len(nodes) == 0 || nodes[len(nodes)-1] != rec.NodeIdentity {
			nodes = append(nodes, rec.NodeIdentity)
		}
	}
	return nodes
}

// NodeHistory returns a copy of the records of node ordered by first valid
// index.
func (r *Registry) NodeHistory(node string) []Record {
	if r == nil {
		return nil
	}
	start := sort.Search(len(r.records), func(i int) bool {
		return r.records[i].NodeIdentity >= node
	})
	end := start
	for end < len(r.records) && r.records[end].NodeIdentity == node {
		end++
	}
	return cloneRecords(r.records[start:end])
}

// Equal reports whether both registries hold the same records.
func (r *Registry) Equal(o *Registry) bool {
	var a, b []Record
	if r != nil {
		a = r.records
	}
	if o != nil {
		b = o.records
	}
	return slices.EqualFunc(a, b, Record.Equal)
}

func cloneRecords(recs []Record) []Record {
	if len(recs) == 0 {
		return nil
	}
	c := make([]Record, len(recs))
	for i, rec := range recs {
		c[i] = rec.Clone()
	}
	return c
}
