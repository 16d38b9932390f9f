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

package logrelay

import (
	"bytes"
	"io"
	"sync"
)

// LineWriter buffers writes and hands each complete line to the downstream
// writer in a single Write call, stripped of its line terminator.
type LineWriter struct {
	mu  sync.Mutex
	dst io.Writer
	buf bytes.Buffer
}

var _ io.WriteCloser = (*LineWriter)(nil)

// NewLineWriter returns a LineWriter emitting lines to dst.
func NewLineWriter(dst io.Writer) *LineWriter {
	return &LineWriter{dst: dst}
}

// Write appends p to the pending buffer and flushes every complete line.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)

	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}

		line := w.buf.Next(i + 1)
		if err := w.emit(line[:i]); err != nil {
			return len(p), err
		}
	}

	return len(p), nil
}

// Close flushes a trailing partial line, if any.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}

	rest := w.buf.Bytes()
	w.buf.Reset()

	return w.emit(rest)
}

func (w *LineWriter) emit(line []byte) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	// copy: the buffer is reused by the next Write
	out := make([]byte, len(line))
	copy(out, line)
	_, err := w.dst.Write(out)
	return err
}
