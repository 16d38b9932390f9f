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

package version

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	info := New("autopack")

	assert.Equal(t, "autopack", info.ToolName)
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.CommitSHA)
	assert.Equal(t, "unknown", info.BuildTimestamp)
	assert.Equal(t, "autopack version dev", info.String())
}

func TestResolve_KeepsLdflagsValues(t *testing.T) {
	info := &Info{
		ToolName:       "autopack",
		Version:        "v1.2.3",
		CommitSHA:      "abc1234",
		BuildTimestamp: "2024-01-01T00:00:00Z",
	}

	assert.Equal(t, *info, info.Resolve())
}

func TestApplyBuildInfo(t *testing.T) {
	tests := []struct {
		name     string
		in       Info
		info     debug.BuildInfo
		expected Info
	}{
		{
			name: "module version and vcs settings",
			in:   *New("autopack"),
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v0.4.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
				},
			},
			expected: Info{
				ToolName:       "autopack",
				Version:        "v0.4.0",
				CommitSHA:      "0123456",
				BuildTimestamp: "2024-05-01T10:00:00Z",
			},
		},
		{
			name: "devel build falls back to revision",
			in:   *New("autopack"),
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fedcba9876"}},
			},
			expected: Info{
				ToolName:       "autopack",
				Version:        "fedcba9",
				CommitSHA:      "fedcba9",
				BuildTimestamp: "unknown",
			},
		},
		{
			name: "ldflags win",
			in:   Info{ToolName: "autopack", Version: "v9", CommitSHA: "c0ffee0", BuildTimestamp: "now"},
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v0.4.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}},
			},
			expected: Info{ToolName: "autopack", Version: "v9", CommitSHA: "c0ffee0", BuildTimestamp: "now"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.in
			applyBuildInfo(&out, &tt.info)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestFprint(t *testing.T) {
	info := &Info{ToolName: "autopack", Version: "v1.0.0", CommitSHA: "abc1234", BuildTimestamp: "today"}

	var buf bytes.Buffer
	info.Fprint(&buf)

	assert.Contains(t, buf.String(), "autopack version v1.0.0\n")
	assert.Contains(t, buf.String(), "commit:    abc1234")
	assert.Contains(t, buf.String(), "built:     today")
	assert.Contains(t, buf.String(), runtime.GOOS+"/"+runtime.GOARCH)
}
