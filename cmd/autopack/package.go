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
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexandremahdhaoui/autopack/pkg/packager"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
)

var (
	errMissingCommand = errors.New("a PyInstaller command is required")
	errCommandTwice   = errors.New("a command cannot be given together with --job")
)

// runPackage implements "autopack package".
func (a *app) runPackage(args []string) error {
	fs := pflag.NewFlagSet("package", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	// Everything after the first positional belongs to PyInstaller.
	fs.SetInterspersed(false)

	output := fs.StringP("output", "o", packager.DefaultOutputDirectory, "directory receiving the bundled application")
	increase := fs.Bool("increase-recursion-limit", false, "run PyInstaller with a recursion limit of 5000")
	keep := fs.Bool("keep-workspace", false, "leave the run workspace on disk")
	jobFile := fs.String("job", "", "YAML job file holding the command and its settings")

	if err := fs.Parse(args); err != nil {
		return err
	}

	job := packager.Job{
		Command: joinCommand(fs.Args()),
		Settings: packager.Settings{
			IncreaseRecursionLimit: *increase,
			OutputDirectory:        *output,
		},
	}

	if *jobFile != "" {
		if job.Command != "" {
			return errCommandTwice
		}

		loaded, err := packager.LoadJob(*jobFile)
		if err != nil {
			return err
		}
		if fs.Changed("output") {
			loaded.OutputDirectory = *output
		}
		if fs.Changed("increase-recursion-limit") {
			loaded.IncreaseRecursionLimit = *increase
		}
		job = loaded
	}

	if job.Command == "" {
		return errMissingCommand
	}

	p, err := a.newPackager(*keep)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result := p.Package(ctx, job.Command, job.Settings, func(line string) {
		_, _ = fmt.Fprintln(a.stdout, line)
	})
	if !result.Success {
		return result.PackagingErr
	}

	return nil
}

// joinCommand rebuilds a command line from positional arguments. A single
// argument is taken as the full command; several are treated as words the
// shell already split and are quoted so Tokenize gives them back unchanged.
func joinCommand(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellquote.Join(args...)
}
