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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/connection"
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/mgmtapi/history/api"
	"github.com/enclavetrust/avrhistory/private/storage"
)

func newLookup(pather CommandPather) *cobra.Command {
	var flags struct {
		format  string
		require bool
		noColor bool
		db      string
	}
	var cmd = &cobra.Command{
		Use:   "lookup [<file>] <node> <index>",
		Short: "Look up the report covering a node at an index",
		Example: fmt.Sprintf(`  %[1]s lookup history.toml peer1.enclave.example:443 15
  %[1]s lookup --format yaml history.toml peer1.enclave.example:443 15
  %[1]s lookup --db history.db peer1.enclave.example:443 15`,
			pather.CommandPath()),
		Long: `'lookup' reports which record of the history covers the node at the index.

The coverage is one of:
  no_record           no window of the node contains the index
  explicit_no_report  a window contains the index but carries no report
  report_present      a window with a report contains the index

With --db, the history database is queried instead of a history file and
the file argument is omitted.

With --require-report, the command fails unless a report is present.
`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			want := 3
			if flags.db != "" {
				want = 2
			}
			if len(args) != want {
				return serrors.New("wrong number of arguments", "expected", want,
					"actual", len(args))
			}
			node, rawIndex := args[want-2], args[want-1]
			index, err := strconv.ParseUint(rawIndex, 10, 64)
			if err != nil {
				return serrors.Wrap("parsing index", err, "index", rawIndex)
			}
			switch flags.format {
			case "human", "json", "yaml":
			default:
				return serrors.New("format not supported", "format", flags.format)
			}
			cmd.SilenceUsage = true

			var res avrhistory.LookupResult
			if flags.db != "" {
				res, err = lookupDB(cmd.Context(), flags.db, node, index)
			} else {
				res, err = lookupFile(args[0], node, index)
			}
			if err != nil {
				return err
			}
			if err := writeLookup(cmd.OutOrStdout(), flags.format, !flags.noColor,
				api.NewLookupResult(node, index, res)); err != nil {
				return err
			}
			if flags.require {
				return connection.CheckHistory(res, node, index)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "human",
		"Specify the output format (human|json|yaml)")
	cmd.Flags().BoolVar(&flags.require, "require-report", false,
		"Fail unless a report covers the index")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&flags.db, "db", "", "Query the history database instead of a file")
	return cmd
}

func lookupFile(file, node string, index uint64) (avrhistory.LookupResult, error) {
	reg, err := avrhistory.Load(file)
	if err != nil {
		return avrhistory.LookupResult{}, err
	}
	return reg.Lookup(node, index), nil
}

func lookupDB(ctx context.Context, conn, node string,
	index uint64) (avrhistory.LookupResult, error) {

	hdb, err := storage.NewHistoryStorage(storage.DBConfig{Connection: conn}, 0)
	if err != nil {
		return avrhistory.LookupResult{}, serrors.Wrap("opening history database", err,
			"db", conn)
	}
	defer func() {
		if err := hdb.Close(); err != nil {
			log.Error("Closing history database", "err", err)
		}
	}()
	res, err := hdb.Lookup(ctx, node, index)
	if err != nil {
		return avrhistory.LookupResult{}, serrors.Wrap("looking up history", err, "db", conn)
	}
	return res, nil
}

func writeLookup(w io.Writer, format string, colored bool, res api.LookupResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(res)
	}
	keys := newColor(colored, color.FgHiCyan)
	field := func(key, value string) {
		fmt.Fprintf(w, "%s%s %s\n", keys.Sprint(key+":"), strings.Repeat(" ", 8-len(key)), value)
	}
	field("Node", res.NodeIdentity)
	field("Index", strconv.FormatUint(res.Index, 10))
	field("Coverage", coverageColor(colored, res.Coverage).Sprint(res.Coverage))
	if res.Window != nil {
		field("Window", avrhistory.Window{
			First: res.Window.FirstValidIndex,
			Last:  res.Window.LastValidIndex,
		}.String())
	}
	if res.Report != nil {
		fmt.Fprintf(w, "%s\n", keys.Sprint("Report:"))
		fmt.Fprintf(w, "  Signature:    %s\n", res.Report.Signature)
		fmt.Fprintf(w, "  Certificates: %d\n", len(res.Report.CertificateChain))
		_, err := fmt.Fprintf(w, "  Body:         %s\n", res.Report.Body)
		return err
	}
	return nil
}

func coverageColor(colored bool, coverage string) *color.Color {
	switch coverage {
	case avrhistory.ReportPresent.String():
		return newColor(colored, color.FgGreen)
	case avrhistory.ExplicitNoReport.String():
		return newColor(colored, color.FgYellow)
	default:
		return newColor(colored, color.FgRed)
	}
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !enabled {
		c.DisableColor()
	}
	return c
}
