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

	"github.com/spf13/cobra"

	"github.com/enclavetrust/avrhistory/pkg/avrhistory"
)

func newConvert(pather CommandPather) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "convert <in> <out>",
		Short:   "Convert a history file between JSON and TOML",
		Example: fmt.Sprintf(`  %[1]s convert history.json history.toml`, pather.CommandPath()),
		Long: `'convert' re-encodes a history bootstrap file.

Both formats are selected by file extension. The output is written in the
canonical record order and with lower-case hex.
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := avrhistory.FormatFromPath(args[1]); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			reg, err := avrhistory.Load(args[0])
			if err != nil {
				return err
			}
			if err := avrhistory.WriteFile(args[1], reg); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", reg.Len(), args[1])
			return err
		},
	}
	return cmd
}
