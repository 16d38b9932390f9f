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

package optioncatalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexandremahdhaoui/autopack/internal/cmdutil"
)

// DetectToolVersion asks the PyInstaller installed for python for its version.
func DetectToolVersion(ctx context.Context, python string) (string, error) {
	output := cmdutil.ExecuteCommandContext(ctx, cmdutil.ExecuteInput{
		Command: python,
		Args:    []string{"-m", "PyInstaller", "--version"},
	})

	if output.ExitCode != 0 {
		msg := fmt.Sprintf("%s -m PyInstaller --version failed with exit code %d", python, output.ExitCode)
		if output.Error != "" {
			msg += ": " + output.Error
		}
		if stderr := strings.TrimSpace(output.Stderr); stderr != "" {
			msg += " (stderr: " + stderr + ")"
		}
		return "", errors.Join(errors.New(msg), errCheckingVersion)
	}

	return strings.TrimSpace(output.Stdout), nil
}
