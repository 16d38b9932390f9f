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

// Package artifact handles PyInstaller output artifacts once a build is done:
// predicting whether a build would overwrite an earlier output, and moving the
// dist directory into the user's output directory.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExecutableExtension returns the extension PyInstaller gives single-file
// executables on goos.
func ExecutableExtension(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// OutputName derives the name PyInstaller gives the artifact built from
// filePath: the base name without its last extension, plus the executable
// extension of goos in single-file mode.
func OutputName(filePath string, oneFile bool, goos string) string {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	if oneFile {
		return name + ExecutableExtension(goos)
	}
	return name
}

// WillOverwrite reports whether packaging filePath into outputDir would
// replace an existing artifact. A missing outputDir never collides.
func WillOverwrite(filePath string, oneFile bool, outputDir string) (bool, error) {
	return willOverwrite(filePath, oneFile, outputDir, runtime.GOOS)
}

func willOverwrite(filePath string, oneFile bool, outputDir, goos string) (bool, error) {
	if _, err := os.Stat(outputDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking output directory %s: %w", outputDir, err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return false, fmt.Errorf("listing output directory %s: %w", outputDir, err)
	}

	want := OutputName(filePath, oneFile, goos)
	for _, entry := range entries {
		if entry.Name() == want {
			return true, nil
		}
	}

	return false, nil
}
