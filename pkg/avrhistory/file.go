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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

// Format is a bootstrap file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath selects the format by file extension. Only the lower-case
// extensions .json and .toml are recognized.
func FormatFromPath(path string) (Format, error) {
	switch filepath.Ext(path) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &UnrecognizedFormatError{Path: path}
	}
}

// historyFile is the on-disk schema shared by JSON and TOML. Pointer fields
// distinguish missing keys from zero values.
type historyFile struct {
	Node *[]fileRecord `json:"node" toml:"node"`
}

// encodedFile is the schema used when writing. go-toml only emits arrays of
// tables for slice values, so Node is not a pointer here.
type encodedFile struct {
	Node []fileRecord `json:"node" toml:"node"`
}

type fileRecord struct {
	NodeIdentity    *string       `json:"node_identity" toml:"node_identity"`
	FirstValidIndex *uint64       `json:"first_valid_index" toml:"first_valid_index"`
	LastValidIndex  *uint64       `json:"last_valid_index" toml:"last_valid_index,omitempty"`
	Report          *ReportShadow `json:"report" toml:"report,omitempty"`
}

// Encode serializes the registry in the given format. Records are written in
// sorted order. TOML cannot represent indices above math.MaxInt64; encoding
// such a registry as TOML fails.
func Encode(reg *Registry, format Format) ([]byte, error) {
	recs := make([]fileRecord, 0, reg.Len())
	for _, rec := range reg.Records() {
		node := rec.NodeIdentity
		first := rec.FirstValidIndex
		recs = append(recs, fileRecord{
			NodeIdentity:    &node,
			FirstValidIndex: &first,
			LastValidIndex:  rec.LastValidIndex,
			Report:          EncodeOptionalReport(rec.Report),
		})
	}
	file := encodedFile{Node: recs}
	switch format {
	case FormatJSON:
		raw, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, serrors.Wrap("encoding history", err, "format", format)
		}
		return append(raw, '\n'), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(file); err != nil {
			return nil, serrors.Wrap("encoding history", err, "format", format)
		}
		return buf.Bytes(), nil
	default:
		return nil, serrors.New("unsupported format", "format", format)
	}
}

// WriteFile encodes the registry in the format given by the extension of
// path and writes it to path.
func WriteFile(path string, reg *Registry) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	raw, err := Encode(reg, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return serrors.Wrap("writing history file", err, "path", path)
	}
	return nil
}
