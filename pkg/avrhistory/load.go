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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads the bootstrap file at path and builds a registry from it. The
// format is selected by the file extension. On any failure no registry is
// returned.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return parse(raw, format, path)
}

// Parse builds a registry from raw bootstrap data in the given format.
func Parse(raw []byte, format Format) (*Registry, error) {
	return parse(raw, format, "")
}

func parse(raw []byte, format Format, path string) (*Registry, error) {
	var (
		file historyFile
		err  error
	)
	switch format {
	case FormatJSON:
		err = decodeJSON(raw, &file, path)
	case FormatTOML:
		err = decodeTOML(raw, &file, path)
	default:
		return nil, &UnrecognizedFormatError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	records, err := file.records(format, path)
	if err != nil {
		return nil, err
	}
	return New(records)
}

func (f historyFile) records(format Format, path string) ([]Record, error) {
	missing := func(field string) error {
		return &ParseError{
			Format: format,
			Path:   path,
			Msg:    fmt.Sprintf("missing field `%s`", field),
		}
	}
	if f.Node == nil {
		return nil, missing("node")
	}
	records := make([]Record, 0, len(*f.Node))
	for i, fr := range *f.Node {
		if fr.NodeIdentity == nil {
			return nil, missing(fmt.Sprintf("node[%d].node_identity", i))
		}
		if fr.FirstValidIndex == nil {
			return nil, missing(fmt.Sprintf("node[%d].first_valid_index", i))
		}
		report, err := DecodeOptionalReport(fr.Report)
		if err != nil {
			var hexErr *InvalidHexError
			if errors.As(err, &hexErr) {
				return nil, &InvalidHexError{
					Field: fmt.Sprintf("node[%d].report.%s", i, hexErr.Field),
					Node:  *fr.NodeIdentity,
					Err:   hexErr.Err,
				}
			}
			return nil, err
		}
		records = append(records, Record{
			NodeIdentity:    *fr.NodeIdentity,
			FirstValidIndex: *fr.FirstValidIndex,
			LastValidIndex:  fr.LastValidIndex,
			Report:          report,
		})
	}
	return records, nil
}

func decodeJSON(raw []byte, file *historyFile, path string) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	perr := func(err error, offset int64) error {
		line, col := position(raw, offset)
		return &ParseError{Format: FormatJSON, Path: path, Line: line, Column: col, Msg: err.Error()}
	}
	if err := dec.Decode(file); err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &syntaxErr):
			return perr(err, syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return perr(err, typeErr.Offset)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return perr(io.ErrUnexpectedEOF, int64(len(raw)))
		default:
			return perr(err, 0)
		}
	}
	if _, err := dec.Token(); err != io.EOF {
		return perr(errors.New("unexpected data after top-level value"), dec.InputOffset())
	}
	return nil
}

func decodeTOML(raw []byte, file *historyFile, path string) error {
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(file)
	if err == nil {
		return nil
	}
	perr := &ParseError{Format: FormatTOML, Path: path, Msg: err.Error()}
	var (
		decErr    *toml.DecodeError
		strictErr *toml.StrictMissingError
	)
	switch {
	case errors.As(err, &decErr):
		perr.Line, perr.Column = decErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := strictErr.Errors[0]
		perr.Line, perr.Column = first.Position()
		perr.Msg = fmt.Sprintf("unknown field `%s`", strings.Join(first.Key(), "."))
	}
	return perr
}

// position converts the number of consumed bytes reported by the JSON
// decoder into the 1-based line and column of the last consumed byte. Offset
// 0 yields 0, 0.
func position(raw []byte, offset int64) (int, int) {
	if offset <= 0 || len(raw) == 0 {
		return 0, 0
	}
	offset = min(offset, int64(len(raw)))
	before := raw[:offset-1]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
