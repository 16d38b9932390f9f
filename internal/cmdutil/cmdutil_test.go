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

package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"# comment",
		"FOO=bar",
		"export BAZ=qux",
		`QUOTED="hello world"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	vars, err := LoadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, "bar", vars["FOO"])
	assert.Equal(t, "qux", vars["BAZ"])
	assert.Equal(t, "hello world", vars["QUOTED"])
}

func TestLoadEnvFile_MissingFileIsEmpty(t *testing.T) {
	vars, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestExecuteCommand_CapturesOutput(t *testing.T) {
	skipOnWindows(t)

	output := ExecuteCommand(ExecuteInput{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2; echo $GREETING"},
		Env:     map[string]string{"GREETING": "hi"},
	})

	assert.Equal(t, 0, output.ExitCode)
	assert.Equal(t, "out\nhi\n", output.Stdout)
	assert.Equal(t, "err\n", output.Stderr)
	assert.Empty(t, output.Error)
}

func TestExecuteCommand_ExitCode(t *testing.T) {
	skipOnWindows(t)

	output := ExecuteCommand(ExecuteInput{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})

	assert.Equal(t, 3, output.ExitCode)
	assert.Empty(t, output.Error)
}

func TestExecuteCommand_MissingBinary(t *testing.T) {
	output := ExecuteCommand(ExecuteInput{
		Command: "autopack-definitely-not-a-binary",
	})

	assert.Equal(t, -1, output.ExitCode)
	assert.NotEmpty(t, output.Error)
}

func TestExecuteCommand_EnvFilePrecedence(t *testing.T) {
	skipOnWindows(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("A=file\nB=file\n"), 0o600))

	output := ExecuteCommand(ExecuteInput{
		Command: "sh",
		Args:    []string{"-c", "echo $A $B"},
		Env:     map[string]string{"B": "inline"},
		EnvFile: envFile,
	})

	require.Equal(t, 0, output.ExitCode, output.Error)
	assert.Equal(t, "file inline\n", output.Stdout)
}

func TestStreamCommand(t *testing.T) {
	skipOnWindows(t)

	var buf bytes.Buffer
	err := StreamCommand(context.Background(), StreamInput{
		ExecuteInput: ExecuteInput{
			Command: "sh",
			Args:    []string{"-c", "echo one; echo two >&2"},
		},
		Output: &buf,
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "one\n")
	assert.Contains(t, buf.String(), "two\n")
}

func TestStreamCommand_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	var buf bytes.Buffer
	err := StreamCommand(context.Background(), StreamInput{
		ExecuteInput: ExecuteInput{
			Command: "sh",
			Args:    []string{"-c", "echo boom >&2; exit 2"},
		},
		Output: &buf,
	})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Equal(t, "boom\n", buf.String())
}

func TestStreamCommand_EmptyCommand(t *testing.T) {
	err := StreamCommand(context.Background(), StreamInput{})
	assert.Error(t, err)
}
