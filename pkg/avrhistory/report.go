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
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
)

// Report is an attestation report as produced by the attestation service:
// a signature over Body, the certificate chain of the signing key (leaf
// first) and the raw response body. The package treats all fields as opaque.
type Report struct {
	Signature        []byte
	CertificateChain [][]byte
	Body             string
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	c := Report{
		Signature: slices.Clone(r.Signature),
		Body:      r.Body,
	}
	if r.CertificateChain != nil {
		c.CertificateChain = make([][]byte, len(r.CertificateChain))
		for i, cert := range r.CertificateChain {
			c.CertificateChain[i] = slices.Clone(cert)
		}
	}
	return c
}

// Equal reports whether both reports carry the same bytes. Nil and empty
// byte slices are considered equal.
func (r Report) Equal(o Report) bool {
	if r.Body != o.Body || !bytes.Equal(r.Signature, o.Signature) {
		return false
	}
	return slices.EqualFunc(r.CertificateChain, o.CertificateChain, bytes.Equal)
}

// ReportShadow is the textual form of a Report used in bootstrap files and
// API responses. Binary fields are hex encoded.
type ReportShadow struct {
	Signature        string   `json:"signature" toml:"signature" yaml:"signature"`
	CertificateChain []string `json:"certificate_chain" toml:"certificate_chain" yaml:"certificate_chain"`
	Body             string   `json:"body" toml:"body" yaml:"body"`
}

// EncodeReport converts r to its textual form. Hex output is lower-case and
// an empty chain is encoded as an empty, non-nil list.
func EncodeReport(r Report) ReportShadow {
	chain := make([]string, 0, len(r.CertificateChain))
	for _, cert := range r.CertificateChain {
		chain = append(chain, hex.EncodeToString(cert))
	}
	return ReportShadow{
		Signature:        hex.EncodeToString(r.Signature),
		CertificateChain: chain,
		Body:             r.Body,
	}
}

// DecodeReport converts the textual form back to a Report. Hex input may be
// upper- or lower-case. Malformed hex results in an *InvalidHexError whose
// Field is relative to the report, e.g. "certificate_chain[1]".
func DecodeReport(s ReportShadow) (Report, error) {
	sig, err := decodeHex(s.Signature)
	if err != nil {
		return Report{}, &InvalidHexError{Field: "signature", Err: err}
	}
	var chain [][]byte
	if len(s.CertificateChain) > 0 {
		chain = make([][]byte, 0, len(s.CertificateChain))
	}
	for i, cert := range s.CertificateChain {
		raw, err := decodeHex(cert)
		if err != nil {
			return Report{}, &InvalidHexError{
				Field: fmt.Sprintf("certificate_chain[%d]", i),
				Err:   err,
			}
		}
		chain = append(chain, raw)
	}
	return Report{
		Signature:        sig,
		CertificateChain: chain,
		Body:             s.Body,
	}, nil
}

// EncodeOptionalReport encodes r, keeping nil as nil. A nil shadow is
// written as null in JSON and omitted in TOML.
func EncodeOptionalReport(r *Report) *ReportShadow {
	if r == nil {
		return nil
	}
	s := EncodeReport(*r)
	return &s
}

// DecodeOptionalReport is the inverse of EncodeOptionalReport.
func DecodeOptionalReport(s *ReportShadow) (*Report, error) {
	if s == nil {
		return nil, nil
	}
	r, err := DecodeReport(*s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
