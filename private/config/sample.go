// Copyright 2019 Anapaya Systems
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

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// CtxMap contains the context for sample generation.
type CtxMap map[string]string

// WriteSample writes all sample blocks in order. TableSamplers get a
// [path.name] header and indented content. It panics on write errors.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	var buf bytes.Buffer
	for _, sampler := range samplers {
		buf.Reset()
		if ts, ok := sampler.(TableSampler); ok {
			p := path.Extend(ts.ConfigName())
			WriteString(dst, fmt.Sprintf("\n[%s]", strings.Join(p, ".")))
			ts.Sample(&buf, p, ctx)
			scanner := bufio.NewScanner(&buf)
			for scanner.Scan() {
				if line := scanner.Text(); line != "" {
					WriteString(dst, "    "+line+"\n")
				} else {
					WriteString(dst, "\n")
				}
			}
			continue
		}
		sampler.Sample(&buf, path, ctx)
		if _, err := io.Copy(dst, &buf); err != nil {
			panic(fmt.Sprintf("Unable to write sample err=%s", err))
		}
	}
}

// WriteString writes s to dst. It panics on write errors.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("Unable to write string err=%s", err))
	}
}
