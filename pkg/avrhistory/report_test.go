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

package avrhistory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/private/xtest"
)

func TestDecodeReport(t *testing.T) {
	testCases := map[string]struct {
		Shadow    avrhistory.ReportShadow
		Expected  avrhistory.Report
		ErrField  string
		Assertion assert.ErrorAssertionFunc
	}{
		"valid": {
			Shadow: avrhistory.ReportShadow{
				Signature:        "dead",
				CertificateChain: []string{"beef", "0001"},
				Body:             "body",
			},
			Expected: avrhistory.Report{
				Signature:        []byte{0xde, 0xad},
				CertificateChain: [][]byte{{0xbe, 0xef}, {0x00, 0x01}},
				Body:             "body",
			},
			Assertion: assert.NoError,
		},
		"upper case": {
			Shadow:    avrhistory.ReportShadow{Signature: "DEAD"},
			Expected:  avrhistory.Report{Signature: []byte{0xde, 0xad}},
			Assertion: assert.NoError,
		},
		"empty": {
			Shadow:    avrhistory.ReportShadow{CertificateChain: []string{}},
			Expected:  avrhistory.Report{},
			Assertion: assert.NoError,
		},
		"non-hex signature": {
			Shadow:    avrhistory.ReportShadow{Signature: "zz"},
			ErrField:  "signature",
			Assertion: assert.Error,
		},
		"odd length signature": {
			Shadow:    avrhistory.ReportShadow{Signature: "dea"},
			ErrField:  "signature",
			Assertion: assert.Error,
		},
		"invalid certificate": {
			Shadow: avrhistory.ReportShadow{
				Signature:        "dead",
				CertificateChain: []string{"beef", "xyz0"},
			},
			ErrField:  "certificate_chain[1]",
			Assertion: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			r, err := avrhistory.DecodeReport(tc.Shadow)
			tc.Assertion(t, err)
			if err != nil {
				assert.ErrorIs(t, err, avrhistory.ErrInvalidHex)
				var hexErr *avrhistory.InvalidHexError
				require.ErrorAs(t, err, &hexErr)
				assert.Equal(t, tc.ErrField, hexErr.Field)
				return
			}
			assert.Equal(t, tc.Expected, r)
		})
	}
}

func TestEncodeReport(t *testing.T) {
	t.Run("lower case hex", func(t *testing.T) {
		s := avrhistory.EncodeReport(avrhistory.Report{
			Signature:        []byte{0xde, 0xad},
			CertificateChain: [][]byte{{0xBE, 0xEF}},
			Body:             `{"isvEnclaveQuoteStatus":"OK"}`,
		})
		assert.Equal(t, "dead", s.Signature)
		assert.Equal(t, []string{"beef"}, s.CertificateChain)
		assert.Equal(t, `{"isvEnclaveQuoteStatus":"OK"}`, s.Body)
	})
	t.Run("empty chain is a list", func(t *testing.T) {
		raw, err := json.Marshal(avrhistory.EncodeReport(avrhistory.Report{}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"signature":"","certificate_chain":[],"body":""}`, string(raw))
	})
	t.Run("round trip", func(t *testing.T) {
		reports := []avrhistory.Report{
			{},
			{Signature: []byte{0x00}},
			{
				Signature: xtest.MustParseHexString("3045022100c0ffee"),
				CertificateChain: [][]byte{
					xtest.MustParseHexString("308201 0a02820101"),
					xtest.MustParseHexString("30820122"),
				},
				Body: "multi\nline \"body\"",
			},
		}
		for _, r := range reports {
			decoded, err := avrhistory.DecodeReport(avrhistory.EncodeReport(r))
			require.NoError(t, err)
			assert.True(t, r.Equal(decoded), "got %v, want %v", decoded, r)
		}
	})
}

func TestOptionalReport(t *testing.T) {
	assert.Nil(t, avrhistory.EncodeOptionalReport(nil))
	r, err := avrhistory.DecodeOptionalReport(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	// An empty report is distinct from no report.
	s := avrhistory.EncodeOptionalReport(&avrhistory.Report{})
	require.NotNil(t, s)
	r, err = avrhistory.DecodeOptionalReport(s)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Equal(avrhistory.Report{}))

	_, err = avrhistory.DecodeOptionalReport(&avrhistory.ReportShadow{Signature: "zz"})
	assert.ErrorIs(t, err, avrhistory.ErrInvalidHex)
}

func TestReportClone(t *testing.T) {
	orig := avrhistory.Report{
		Signature:        []byte{1, 2},
		CertificateChain: [][]byte{{3, 4}},
		Body:             "b",
	}
	c := orig.Clone()
	c.Signature[0] = 9
	c.CertificateChain[0][0] = 9
	assert.Equal(t, []byte{1, 2}, orig.Signature)
	assert.Equal(t, []byte{3, 4}, orig.CertificateChain[0])
}
