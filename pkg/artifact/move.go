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

package artifact

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
)

var errMovingArtifacts = errors.New("moving artifacts")

// Move relocates every top-level entry of src into dst, creating dst when it
// does not exist. An entry already present in dst under the same name is
// removed first, so the moved entry replaces it.
//
// Move is not atomic. On error the names moved so far are returned alongside
// the error and the remaining entries stay in src.
func Move(src, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, errors.Join(err, errMovingArtifacts)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, errors.Join(err, errMovingArtifacts)
	}

	moved := make([]string, 0, len(entries))
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if err := removeExisting(to); err != nil {
			return moved, errors.Join(err, errMovingArtifacts)
		}

		if err := moveEntry(from, to); err != nil {
			return moved, errors.Join(err, errMovingArtifacts)
		}

		moved = append(moved, entry.Name())
	}

	return moved, nil
}

// removeExisting deletes path, recursively for directories. A missing path is
// not an error.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing directory %s: %w", path, err)
		}
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing file %s: %w", path, err)
	}
	return nil
}

// moveEntry renames from to to, falling back to copy-then-delete when a
// rename is impossible (e.g. the workspace lives on another filesystem).
func moveEntry(from, to string) error {
	renameErr := os.Rename(from, to)
	if renameErr == nil {
		return nil
	}

	log.Printf("rename %s -> %s failed (%v), copying instead", from, to, renameErr)

	if err := copy.Copy(from, to); err != nil {
		return fmt.Errorf("copying %s to %s: %w", from, to, err)
	}

	if err := os.RemoveAll(from); err != nil {
		return fmt.Errorf("removing %s after copy: %w", from, err)
	}

	return nil
}
