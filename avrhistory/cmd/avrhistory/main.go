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

// avrhistory inspects attestation history files and serves them over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/enclavetrust/avrhistory/avrhistory/config"
	"github.com/enclavetrust/avrhistory/private/app/command"
)

// CommandPather returns the path to a command.
type CommandPather interface {
	CommandPath() string
}

func main() {
	executable := filepath.Base(os.Args[0])
	cmd := newRootCommand(executable)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCommand(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         "Attestation history registry",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.AddCommand(
		newValidate(cmd),
		newLookup(cmd),
		newShow(cmd),
		newConvert(cmd),
		newImport(cmd),
		newServe(cmd),
		command.NewSample(cmd, &config.Config{}),
		command.NewGendocs(cmd),
	)
	return cmd
}
