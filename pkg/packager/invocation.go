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
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
)

// Recursion limits handed to the Python interpreter running PyInstaller.
const (
	// DefaultRecursionLimit is CPython's stock limit.
	DefaultRecursionLimit = 1000
	// IncreasedRecursionLimit is used when Settings.IncreaseRecursionLimit is set.
	IncreasedRecursionLimit = 5000
)

var errEmptyCommand = errors.New("command is empty")

// Invocation is one fully resolved PyInstaller run.
type Invocation struct {
	// Program is the first token of the user command (usually "pyinstaller").
	// PyInstaller ignores it, as it would ignore argv[0].
	Program string
	// UserArgs are the tokens the user supplied after Program.
	UserArgs []string
	// Args are UserArgs followed by the workspace overrides.
	Args []string
	// RecursionLimit is set in the interpreter before PyInstaller starts.
	RecursionLimit int
}

// Argv returns the complete argument vector, program first.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, len(i.Args)+1)
	argv = append(argv, i.Program)
	return append(argv, i.Args...)
}

// Tokenize splits command with POSIX shell word rules: quotes and backslash
// escapes group words, everything else is literal. Shell operators such as
// ";" or ">" are ordinary word characters, so "--add-data src;." stays one
// word. Environment variables and backticks are left unexpanded.
func Tokenize(command string) ([]string, error) {
	tokens, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("tokenizing command %q: %w", command, err)
	}

	if len(tokens) == 0 {
		return nil, errEmptyCommand
	}

	return tokens, nil
}

// BuildInvocation tokenizes command and appends the workspace overrides.
// The overrides come last so they win over any user-supplied value for the
// same flags.
func BuildInvocation(command string, ws Workspace, recursionLimit int) (Invocation, error) {
	tokens, err := Tokenize(command)
	if err != nil {
		return Invocation{}, err
	}

	userArgs := tokens[1:]

	args := make([]string, 0, len(userArgs)+6)
	args = append(args, userArgs...)
	args = append(args, ws.OverrideArgs()...)

	return Invocation{
		Program:        tokens[0],
		UserArgs:       userArgs,
		Args:           args,
		RecursionLimit: recursionLimit,
	}, nil
}
