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

// Package command contains subcommands shared by the command line tools.
package command

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/enclavetrust/avrhistory/private/config"
)

// Pather returns the command path of the parent command. It is used to
// render examples relative to the root.
type Pather interface {
	CommandPath() string
}

// NewSample returns a command that prints the sample of cfg.
func NewSample(pather Pather, cfg config.Sampler) *cobra.Command {
	return &cobra.Command{
		Use:     "sample",
		Short:   "Display a sample configuration file",
		Example: fmt.Sprintf("  %[1]s sample > avrhistory.toml", pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSample(cmd.OutOrStdout(), cfg)
		},
	}
}

func writeSample(w io.Writer, cfg config.Sampler) (err error) {
	defer func() {
		// Sample panics on write errors.
		if r := recover(); r != nil {
			err = fmt.Errorf("writing sample: %v", r)
		}
	}()
	cfg.Sample(w, nil, nil)
	return nil
}
