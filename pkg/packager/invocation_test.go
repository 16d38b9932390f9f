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

package packager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "simple",
			command:  "pyinstaller --onefile app.py",
			expected: []string{"pyinstaller", "--onefile", "app.py"},
		},
		{
			name:     "double quoted path with spaces",
			command:  `pyinstaller --icon "C:/My Icons/app.ico" "my script.py"`,
			expected: []string{"pyinstaller", "--icon", "C:/My Icons/app.ico", "my script.py"},
		},
		{
			name:     "single quotes and add-data",
			command:  `pyinstaller --add-data 'assets:assets' app.py`,
			expected: []string{"pyinstaller", "--add-data", "assets:assets", "app.py"},
		},
		{
			name:     "environment variables are not expanded",
			command:  "pyinstaller --name $NAME app.py",
			expected: []string{"pyinstaller", "--name", "$NAME", "app.py"},
		},
		{
			name:     "windows add-data separator",
			command:  "pyinstaller --add-data src;. app.py",
			expected: []string{"pyinstaller", "--add-data", "src;.", "app.py"},
		},
		{
			name:     "parentheses in script name",
			command:  "pyinstaller main(v2).py",
			expected: []string{"pyinstaller", "main(v2).py"},
		},
		{
			name:     "redirection characters are literal",
			command:  "pyinstaller --name a>b 2>err app.py",
			expected: []string{"pyinstaller", "--name", "a>b", "2>err", "app.py"},
		},
		{
			name:     "pipe and ampersand are literal",
			command:  "pyinstaller --name a|b&c app.py",
			expected: []string{"pyinstaller", "--name", "a|b&c", "app.py"},
		},
		{
			name:     "escaped space",
			command:  `pyinstaller my\ script.py`,
			expected: []string{"pyinstaller", "my script.py"},
		},
		{
			name:    "unterminated quote",
			command: `pyinstaller "app.py`,
			wantErr: true,
		},
		{
			name:    "unterminated single quote",
			command: "pyinstaller 'app.py",
			wantErr: true,
		},
		{
			name:    "empty",
			command: "",
			wantErr: true,
		},
		{
			name:    "blank",
			command: "  \t ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.command)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildInvocation(t *testing.T) {
	ws := WorkspaceAt("/tmp/autopack/run")

	inv, err := BuildInvocation("pyinstaller -F app.py", ws, 5000)
	require.NoError(t, err)

	assert.Equal(t, "pyinstaller", inv.Program)
	assert.Equal(t, []string{"-F", "app.py"}, inv.UserArgs)
	assert.Equal(t, []string{
		"-F", "app.py",
		"--distpath", filepath.Join("/tmp/autopack/run", "application"),
		"--workpath", filepath.Join("/tmp/autopack/run", "build"),
		"--specpath", "/tmp/autopack/run",
	}, inv.Args)
	assert.Equal(t, 5000, inv.RecursionLimit)
	assert.Equal(t, append([]string{"pyinstaller"}, inv.Args...), inv.Argv())
}

func TestNewWorkspace(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")

	ws, err := NewWorkspace(root)
	require.NoError(t, err)

	assert.DirExists(t, ws.Root)
	assert.Equal(t, filepath.Join(ws.Root, "application"), ws.DistPath)
	assert.Equal(t, filepath.Join(ws.Root, "build"), ws.WorkPath)
	assert.Equal(t, ws.Root, ws.SpecPath)
	assert.True(t, strings.HasPrefix(ws.Root, root))

	other, err := NewWorkspace(root)
	require.NoError(t, err)
	assert.NotEqual(t, ws.Root, other.Root)

	require.NoError(t, ws.Remove())
	assert.NoDirExists(t, ws.Root)
	assert.DirExists(t, other.Root)
}

func TestNewWorkspace_RootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

	_, err := NewWorkspace(root)
	assert.Error(t, err)
}

func TestPythonRunner_Command(t *testing.T) {
	r := PythonRunner{
		Python:  "python3",
		Env:     map[string]string{"FOO": "bar"},
		EnvFile: ".env",
	}
	inv := Invocation{
		Program:        "pyinstaller",
		Args:           []string{"--onefile", "app.py"},
		RecursionLimit: 5000,
	}

	cmd := r.Command(inv)

	assert.Equal(t, "python3", cmd.Command)
	require.Len(t, cmd.Args, 5)
	assert.Equal(t, "-c", cmd.Args[0])
	assert.Contains(t, cmd.Args[1], "sys.setrecursionlimit(int(sys.argv.pop(1)))")
	assert.Contains(t, cmd.Args[1], "from PyInstaller.__main__ import run")
	assert.Equal(t, []string{"5000", "--onefile", "app.py"}, cmd.Args[2:])
	assert.Equal(t, "bar", cmd.Env["FOO"])
	assert.Equal(t, "1", cmd.Env["PYTHONUNBUFFERED"])
	assert.Equal(t, ".env", cmd.EnvFile)
}
