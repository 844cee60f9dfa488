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

func newValidate(pather CommandPather) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a history bootstrap file",
		Example: fmt.Sprintf(`  %[1]s validate history.toml
  %[1]s validate history.json`, pather.CommandPath()),
		Long: `'validate' loads a history bootstrap file and reports whether it is valid.

The file format is selected by the extension (.json or .toml). A file is valid
if it parses, all hex fields decode, every window is a valid range, and the
windows of each node do not overlap.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			reg, err := avrhistory.Load(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid, %d records, %d nodes\n",
				args[0], reg.Len(), len(reg.Nodes()))
			return err
		},
	}
	return cmd
}
