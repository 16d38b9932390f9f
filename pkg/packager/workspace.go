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
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultWorkspaceRoot is the process-wide directory run workspaces are
// created under when none is configured.
func DefaultWorkspaceRoot() string {
	return filepath.Join(os.TempDir(), "autopack")
}

// Workspace is the private directory tree of one packaging run. PyInstaller
// is pinned into it through the forced --distpath, --workpath and --specpath
// overrides.
type Workspace struct {
	// Root is the run directory; PyInstaller writes the .spec file here.
	Root string
	// DistPath receives the bundled application.
	DistPath string
	// WorkPath holds PyInstaller's intermediate build files.
	WorkPath string
	// SpecPath is where the generated .spec file goes.
	SpecPath string
}

// NewWorkspace creates a uniquely named run directory under root.
func NewWorkspace(root string) (Workspace, error) {
	if root == "" {
		root = DefaultWorkspaceRoot()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return Workspace{}, fmt.Errorf("creating workspace root %s: %w", root, err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolving workspace root %s: %w", root, err)
	}

	dir := filepath.Join(absRoot, uuid.New().String())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return Workspace{}, fmt.Errorf("creating workspace %s: %w", dir, err)
	}

	return WorkspaceAt(dir), nil
}

// WorkspaceAt returns the layout of a workspace rooted at dir without
// touching the filesystem.
func WorkspaceAt(dir string) Workspace {
	return Workspace{
		Root:     dir,
		DistPath: filepath.Join(dir, "application"),
		WorkPath: filepath.Join(dir, "build"),
		SpecPath: dir,
	}
}

// OverrideArgs returns the flags appended to every PyInstaller invocation.
func (w Workspace) OverrideArgs() []string {
	return []string{
		"--distpath", w.DistPath,
		"--workpath", w.WorkPath,
		"--specpath", w.SpecPath,
	}
}

// Remove deletes the workspace and everything in it.
func (w Workspace) Remove() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("removing workspace %s: %w", w.Root, err)
	}
	return nil
}
