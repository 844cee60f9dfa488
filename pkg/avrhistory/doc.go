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

// Package avrhistory records which attestation report, if any, backed a
// node's signing key during a range of block indices.
//
// A Registry is an immutable, sorted set of Records. Each Record is a
// validity window [first, last] (last may be open-ended) for one node
// identity, carrying either a Report or an explicit "no valid report". For a
// given node the windows never overlap, so Lookup is unambiguous:
//
//	reg, err := avrhistory.Load("avr-history.toml")
//	if err != nil {
//		return err
//	}
//	switch res := reg.Lookup(node, blockIndex); res.Coverage {
//	case avrhistory.ReportPresent:
//		// res.Report backed the node at blockIndex.
//	case avrhistory.ExplicitNoReport:
//		// The node was known to have no valid report at blockIndex.
//	case avrhistory.NoRecord:
//		// Nothing is known about the node at blockIndex.
//	}
//
// # Bootstrap file
//
// The bootstrap file is JSON or TOML, selected by the file extension. Both
// formats share the same schema: a top-level "node" array of records with
// the keys node_identity, first_valid_index, last_valid_index and report.
// Binary report fields are hex encoded. In JSON an absent upper bound or
// report is written as null; in TOML the key is omitted.
//
// The package does not verify report signatures or certificate chains.
package avrhistory
