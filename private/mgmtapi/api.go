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

// Package mgmtapi contains the building blocks shared by the management
// HTTP APIs.
package mgmtapi

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 problem detail.
type Problem struct {
	// Detail is a human-readable explanation specific to this occurrence.
	Detail *string `json:"detail,omitempty"`
	// Status is the HTTP status code.
	Status int `json:"status"`
	// Title is a short summary of the problem type.
	Title string `json:"title"`
	// Type is a URI reference that identifies the problem type.
	Type *string `json:"type,omitempty"`
}

// Problem titles used by the APIs.
const (
	BadRequest    = "bad request"
	NotFound      = "not found"
	InternalError = "internal error"
)

// ErrorResponse writes p as application/problem+json.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}

// JSONResponse writes v as indented JSON with status 200.
func JSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Type:   StringRef(InternalError),
		})
	}
}

// StringRef returns a pointer to s.
func StringRef(s string) *string {
	return &s
}
