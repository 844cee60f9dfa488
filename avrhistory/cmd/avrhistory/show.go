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
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
)

func newShow(pather CommandPather) *cobra.Command {
	var flags struct {
		node string
	}
	var cmd = &cobra.Command{
		Use:   "show <file>",
		Short: "Show the validity windows of a history file",
		Example: fmt.Sprintf(`  %[1]s show history.toml
  %[1]s show --node peer1.enclave.example:443 history.toml`, pather.CommandPath()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			reg, err := avrhistory.Load(args[0])
			if err != nil {
				return err
			}
			records := reg.Records()
			if cmd.Flags().Lookup("node").Changed {
				records = reg.NodeHistory(flags.node)
				if len(records) == 0 {
					return serrors.New("no history for node", "node", flags.node)
				}
			}
			renderTable(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.node, "node", "", "Only show the windows of this node")
	return cmd
}

func renderTable(w io.Writer, records []avrhistory.Record) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		report := "-"
		if rec.Report != nil {
			report = strconv.Itoa(len(rec.Report.CertificateChain)) + " certs"
		}
		rows = append(rows, []string{
			rec.NodeIdentity,
			rec.Window().String(),
			report,
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"NODE", "WINDOW", "REPORT"})
	table.AppendBulk(rows)
	table.Render()
}
