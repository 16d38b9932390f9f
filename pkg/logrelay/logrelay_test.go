//go:build unit

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
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, s)
}

func TestRelay_WriteForwardsOnceAndReturnsLength(t *testing.T) {
	rec := &recorder{}
	relay := New(rec.record)

	s := "12 INFO: PyInstaller: 6.3.0\n"
	n, err := relay.Write([]byte(s))

	require.NoError(t, err)
	assert.Equal(t, len(s), n)
	assert.Equal(t, []string{s}, rec.lines)
}

func TestRelay_WriteString(t *testing.T) {
	rec := &recorder{}
	relay := New(rec.record)

	n, err := io.WriteString(relay, "hello")

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"hello"}, rec.lines)
}

func TestRelay_NilOutputDiscards(t *testing.T) {
	relay := New(nil)

	n, err := relay.Write([]byte("dropped"))

	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestLineWriter(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   []string
	}{
		{
			name:   "single complete line",
			writes: []string{"hello\n"},
			want:   []string{"hello"},
		},
		{
			name:   "line split across writes",
			writes: []string{"hel", "lo wor", "ld\n"},
			want:   []string{"hello world"},
		},
		{
			name:   "several lines in one write",
			writes: []string{"a\nb\nc\n"},
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "crlf terminators",
			writes: []string{"a\r\nb\r\n"},
			want:   []string{"a", "b"},
		},
		{
			name:   "empty lines are kept",
			writes: []string{"a\n\nb\n"},
			want:   []string{"a", "", "b"},
		},
		{
			name:   "trailing partial line flushed on close",
			writes: []string{"a\npartial"},
			want:   []string{"a", "partial"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			w := NewLineWriter(New(rec.record))

			for _, s := range tt.writes {
				n, err := w.Write([]byte(s))
				require.NoError(t, err)
				assert.Equal(t, len(s), n)
			}
			require.NoError(t, w.Close())

			assert.Equal(t, tt.want, rec.lines)
		})
	}
}

func TestLineWriter_CloseWithoutPendingIsNoop(t *testing.T) {
	rec := &recorder{}
	w := NewLineWriter(New(rec.record))

	require.NoError(t, w.Close())
	assert.Empty(t, rec.lines)
}

func TestLineWriter_ConcurrentWriters(t *testing.T) {
	rec := &recorder{}
	w := NewLineWriter(New(rec.record))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = fmt.Fprintf(w, "line %d\n", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, rec.lines, 10)
}

func TestNewLogger_Format(t *testing.T) {
	rec := &recorder{}
	logger := NewLogger(NewLineWriter(New(rec.record)), zerolog.DebugLevel)

	logger.Info().Msg("Building directory: /tmp/ws")
	logger.Warn().Msg("careful")
	logger.Debug().Msg("details")

	require.Len(t, rec.lines, 3)
	assert.Regexp(t, `^\d+ INFO: Building directory: /tmp/ws$`, rec.lines[0])
	assert.Regexp(t, `^\d+ WARNING: careful$`, rec.lines[1])
	assert.Regexp(t, `^\d+ DEBUG: details$`, rec.lines[2])
}

func TestNewLogger_LevelFilter(t *testing.T) {
	rec := &recorder{}
	logger := NewLogger(NewLineWriter(New(rec.record)), zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Error().Msg("shown")

	require.Len(t, rec.lines, 1)
	assert.Regexp(t, `^\d+ ERROR: shown$`, rec.lines[0])
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = ParseLevel("Warning")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = ParseLevel("critical")
	require.NoError(t, err)
	assert.Equal(t, zerolog.FatalLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
