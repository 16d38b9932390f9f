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
	"context"
	"io"
	"strconv"

	"github.com/alexandremahdhaoui/autopack/internal/cmdutil"
)

// Runner executes a PyInstaller invocation, writing everything the tool
// prints to output. A non-nil error means packaging failed.
type Runner interface {
	Run(ctx context.Context, inv Invocation, output io.Writer) error
}

// bootstrapScript is passed to `python -c`. argv[1] carries the recursion
// limit; PyInstaller then parses the remaining arguments as its own.
const bootstrapScript = `import sys
sys.setrecursionlimit(int(sys.argv.pop(1)))
from PyInstaller.__main__ import run
run()
`

// PythonRunner runs PyInstaller in a child Python interpreter.
type PythonRunner struct {
	// Python is the interpreter with PyInstaller installed.
	Python string
	// Env holds extra environment variables for the child.
	Env map[string]string
	// EnvFile is an optional dotenv file merged into the child environment.
	EnvFile string
	// WorkDir is the child's working directory; empty means the current one.
	WorkDir string
}

var _ Runner = PythonRunner{}

// Command returns the exact command PythonRunner executes for inv.
func (r PythonRunner) Command(inv Invocation) cmdutil.ExecuteInput {
	args := make([]string, 0, len(inv.Args)+3)
	args = append(args, "-c", bootstrapScript, strconv.Itoa(inv.RecursionLimit))
	args = append(args, inv.Args...)

	env := map[string]string{"PYTHONUNBUFFERED": "1"}
	for k, v := range r.Env {
		env[k] = v
	}

	return cmdutil.ExecuteInput{
		Command: r.Python,
		Args:    args,
		Env:     env,
		EnvFile: r.EnvFile,
		WorkDir: r.WorkDir,
	}
}

// Run implements Runner.
func (r PythonRunner) Run(ctx context.Context, inv Invocation, output io.Writer) error {
	return cmdutil.StreamCommand(ctx, cmdutil.StreamInput{
		ExecuteInput: r.Command(inv),
		Output:       output,
	})
}
