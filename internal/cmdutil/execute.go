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
	"fmt"
	"os/exec"
)

// ExecuteCommand executes a command and captures its output.
//
// Environment variables are merged with the following precedence (highest to lowest):
//  1. Inline env vars (input.Env)
//  2. Env file vars (input.EnvFile)
//  3. System environment
//
// Returns ExecuteOutput with exit code, stdout, stderr, and any error message.
func ExecuteCommand(input ExecuteInput) ExecuteOutput {
	return ExecuteCommandContext(context.Background(), input)
}

// ExecuteCommandContext is ExecuteCommand bound to ctx; cancelling ctx kills
// the command.
func ExecuteCommandContext(ctx context.Context, input ExecuteInput) ExecuteOutput {
	cmd, err := newCommand(ctx, input)
	if err != nil {
		return ExecuteOutput{
			ExitCode: -1,
			Error:    err.Error(),
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	output := ExecuteOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
		} else {
			output.ExitCode = -1
			output.Error = err.Error()
		}
	}

	return output
}

// ExitError reports a streamed command that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// StreamCommand runs a command, writing its stdout and stderr to
// input.Output as they are produced. It returns an *ExitError when the
// command exits non-zero, or another error when it could not be run.
func StreamCommand(ctx context.Context, input StreamInput) error {
	cmd, err := newCommand(ctx, input.ExecuteInput)
	if err != nil {
		return err
	}

	// A single writer value makes exec serialize writes from both streams.
	cmd.Stdout = input.Output
	cmd.Stderr = input.Output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: input.Command, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("running %s: %w", input.Command, err)
	}

	return nil
}

func newCommand(ctx context.Context, input ExecuteInput) (*exec.Cmd, error) {
	if input.Command == "" {
		return nil, errors.New("command is required")
	}

	cmd := exec.CommandContext(ctx, input.Command, input.Args...)

	if input.WorkDir != "" {
		cmd.Dir = input.WorkDir
	}

	env, err := mergeEnv(input)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cmd.Env = env

	return cmd, nil
}
