// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logrelay adapts a caller-supplied "emit a line" callback into the
// io.Writer and logger sinks used while driving PyInstaller.
//
// The chain used by the packager is:
//
//	child stdout/stderr ─┐
//	                     ├─> LineWriter ─> Relay ─> OutputFunc(line)
//	zerolog logger ──────┘
package logrelay

// OutputFunc receives one chunk of text. When fed through a LineWriter every
// call carries exactly one line without its trailing newline.
type OutputFunc func(string)

// Relay is a write-only text sink forwarding every write to an OutputFunc.
type Relay struct {
	output OutputFunc
}

// New returns a Relay forwarding to output. A nil output discards writes.
func New(output OutputFunc) *Relay {
	if output == nil {
		output = func(string) {}
	}
	return &Relay{output: output}
}

// Write forwards p as a single string and reports the whole of p as written.
func (r *Relay) Write(p []byte) (int, error) {
	r.output(string(p))
	return len(p), nil
}

// WriteString is the string counterpart of Write; it lets io.WriteString skip
// the []byte conversion.
func (r *Relay) WriteString(s string) (int, error) {
	r.output(s)
	return len(s), nil
}
