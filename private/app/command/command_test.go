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

package command_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclavetrust/avrhistory/private/app/command"
	"github.com/enclavetrust/avrhistory/private/config"
)

type rootPather struct{}

func (rootPather) CommandPath() string { return "tool" }

func TestSample(t *testing.T) {
	cmd := command.NewSample(rootPather{}, config.StringSampler{Text: "\nkey = 1\n"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "\nkey = 1\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestSampleWriteError(t *testing.T) {
	cmd := command.NewSample(rootPather{}, config.StringSampler{Text: "x"})
	cmd.SetOut(failingWriter{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestGendocs(t *testing.T) {
	root := &cobra.Command{Use: "tool"}
	root.AddCommand(&cobra.Command{Use: "show", Short: "Show", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(command.NewGendocs(root))
	dir := t.TempDir()
	root.SetArgs([]string{"gendocs", dir})
	require.NoError(t, root.Execute())

	for _, f := range []string{"tool.md", "tool_show.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
	_, err := os.Stat(filepath.Join(dir, "tool_gendocs.md"))
	assert.True(t, os.IsNotExist(err))
}
