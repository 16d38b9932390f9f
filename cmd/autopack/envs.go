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

package main

import (
	"fmt"
	"runtime"

	"github.com/alexandremahdhaoui/autopack/pkg/logrelay"
	"github.com/alexandremahdhaoui/autopack/pkg/optioncatalog"
	"github.com/alexandremahdhaoui/autopack/pkg/packager"
	"github.com/caarlos0/env/v11"
)

// ----------------------------------------------------- ENVS ------------------------------------------------------- //

// Envs holds the environment variables read by autopack.
type Envs struct {
	// Python is the interpreter PyInstaller is installed for.
	Python string `env:"AUTOPACK_PYTHON"`
	// WorkspaceRoot is the directory run workspaces are created under.
	WorkspaceRoot string `env:"AUTOPACK_WORKSPACE_ROOT"`
	// DefaultRecursionLimit applies to runs that do not ask for the increased limit.
	DefaultRecursionLimit int `env:"AUTOPACK_DEFAULT_RECURSION_LIMIT" envDefault:"1000"`
	// EnvFile is a dotenv file merged into PyInstaller's environment.
	EnvFile string `env:"AUTOPACK_ENV_FILE"`
	// KeepWorkspace leaves run workspaces on disk.
	KeepWorkspace bool `env:"AUTOPACK_KEEP_WORKSPACE"`
	// LogLevel filters autopack's own log records.
	LogLevel string `env:"AUTOPACK_LOG_LEVEL" envDefault:"info"`
}

func defaultPython(goos string) string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

// readEnvs parses Envs from the process environment.
func readEnvs() (Envs, error) {
	envs := Envs{} //nolint:exhaustruct // unmarshal

	if err := env.Parse(&envs); err != nil {
		return Envs{}, err
	}

	if _, err := logrelay.ParseLevel(envs.LogLevel); err != nil {
		return Envs{}, fmt.Errorf("AUTOPACK_LOG_LEVEL: %w", err)
	}

	if envs.Python == "" {
		envs.Python = defaultPython(runtime.GOOS)
	}

	return envs, nil
}

// packagerConfig maps envs onto a packager configuration.
func (e Envs) packagerConfig(runner packager.Runner, catalog *optioncatalog.Catalog) packager.Config {
	if runner == nil {
		runner = packager.PythonRunner{
			Python:  e.Python,
			EnvFile: e.EnvFile,
		}
	}

	return packager.Config{
		Version:               Version,
		WorkspaceRoot:         e.WorkspaceRoot,
		DefaultRecursionLimit: e.DefaultRecursionLimit,
		KeepWorkspace:         e.KeepWorkspace,
		Runner:                runner,
		Catalog:               catalog,
		LogLevel:              e.LogLevel,
	}
}
