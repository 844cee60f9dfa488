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
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/storage"
)

func newImport(pather CommandPather) *cobra.Command {
	var flags struct {
		db      string
		replace bool
	}
	var cmd = &cobra.Command{
		Use:   "import <file> --db <database>",
		Short: "Import a history file into the history database",
		Example: fmt.Sprintf(`  %[1]s import history.toml --db history.db
  %[1]s import --replace history.toml --db history.db`, pather.CommandPath()),
		Long: `'import' stores the records of a history bootstrap file in the history database.

By default the records are added to the stored history. The combined history
must remain valid. With --replace, the stored history is replaced.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			reg, err := avrhistory.Load(args[0])
			if err != nil {
				return err
			}
			cfg := storage.DBConfig{Connection: flags.db}
			cfg.InitDefaults()
			hdb, err := storage.NewHistoryStorage(cfg, 0)
			if err != nil {
				return serrors.Wrap("opening history database", err, "db", flags.db)
			}
			defer func() {
				if err := hdb.Close(); err != nil {
					log.Error("Closing history database", "err", err)
				}
			}()

			n := reg.Len()
			if flags.replace {
				err = hdb.ReplaceHistory(cmd.Context(), reg)
			} else {
				n, err = hdb.InsertRecords(cmd.Context(), reg.Records())
			}
			if err != nil {
				return serrors.Wrap("storing history", err, "db", flags.db)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", n, flags.db)
			return err
		},
	}
	cmd.Flags().StringVar(&flags.db, "db", "", "The history database (required)")
	cmd.Flags().BoolVar(&flags.replace, "replace", false, "Replace the stored history")
	if err := cmd.MarkFlagRequired("db"); err != nil {
		panic(err)
	}
	return cmd
}
