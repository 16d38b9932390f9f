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
	"context"
	"io"
	"log"
	"os"

	"github.com/alexandremahdhaoui/autopack/internal/cli"
	"github.com/alexandremahdhaoui/autopack/pkg/optioncatalog"
	"github.com/alexandremahdhaoui/autopack/pkg/packager"
)

// app carries what the subcommands share. Tests swap the runner and the
// version probe for fakes.
type app struct {
	envs   *Envs
	stdout io.Writer
	stderr io.Writer

	runner        packager.Runner
	detectVersion func(ctx context.Context, python string) (string, error)
}

func newApp() *app {
	return &app{
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		detectVersion: optioncatalog.DetectToolVersion,
	}
}

func (a *app) commands() []cli.Command {
	return []cli.Command{
		{
			Name:    "package",
			Usage:   `package [--output DIR] [--increase-recursion-limit] [--keep-workspace] [--job FILE] "<command>"`,
			Summary: "Run PyInstaller and move the result into DIR",
			Run:     a.runPackage,
		},
		{
			Name:    "options",
			Usage:   "options [--format json|yaml] [--group NAME] [--check]",
			Summary: "Print the PyInstaller options autopack knows",
			Run:     a.runOptions,
		},
		{
			Name:    "check-overwrite",
			Usage:   "check-overwrite --output DIR [--onefile] FILE",
			Summary: "Report whether packaging FILE would replace an entry in DIR",
			Run:     a.runCheckOverwrite,
		},
	}
}

// config returns the environment configuration, reading it on first use.
func (a *app) config() (Envs, error) {
	if a.envs == nil {
		envs, err := readEnvs()
		if err != nil {
			return Envs{}, err
		}
		a.envs = &envs
	}
	return *a.envs, nil
}

// newPackager builds a Packager from the environment and the embedded
// catalog. keepWorkspace adds to AUTOPACK_KEEP_WORKSPACE.
func (a *app) newPackager(keepWorkspace bool) (*packager.Packager, error) {
	envs, err := a.config()
	if err != nil {
		return nil, err
	}
	envs.KeepWorkspace = envs.KeepWorkspace || keepWorkspace

	catalog, err := optioncatalog.Load()
	if err != nil {
		return nil, err
	}

	return packager.New(envs.packagerConfig(a.runner, catalog)), nil
}

// logf writes a diagnostic line to stderr. Stdout carries command output, and
// the JSON-RPC stream in MCP mode.
func (a *app) logf(format string, v ...any) {
	log.New(a.stderr, "", log.LstdFlags).Printf(format, v...)
}
