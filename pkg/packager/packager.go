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

// Package packager drives PyInstaller: it pins each run into a private
// workspace, runs the tool as a child process while relaying its output, and
// moves the bundled application into the user's output directory.
package packager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexandremahdhaoui/autopack/pkg/artifact"
	"github.com/alexandremahdhaoui/autopack/pkg/logrelay"
	"github.com/alexandremahdhaoui/autopack/pkg/optioncatalog"
	"github.com/rs/zerolog"
)

var (
	// ErrPackagingFailed wraps every failure that happened before or while
	// PyInstaller ran. Nothing is moved to the output directory.
	ErrPackagingFailed = errors.New("packaging failed")
	// ErrRelocationFailed wraps a failure to move a successful build into
	// the output directory. The run still counts as a success.
	ErrRelocationFailed = errors.New("moving project to output directory failed")
)

// MoveFunc relocates the entries of src into dst and returns the names moved.
type MoveFunc func(src, dst string) ([]string, error)

// Config configures a Packager.
type Config struct {
	// Version is shown in the run banner.
	Version string
	// WorkspaceRoot is where run workspaces are created. Defaults to DefaultWorkspaceRoot().
	WorkspaceRoot string
	// DefaultRecursionLimit applies when a run does not ask for the increased
	// limit. Defaults to DefaultRecursionLimit.
	DefaultRecursionLimit int
	// KeepWorkspace leaves run workspaces on disk for inspection.
	KeepWorkspace bool
	// Runner executes PyInstaller. Required.
	Runner Runner
	// Move relocates build output. Defaults to artifact.Move.
	Move MoveFunc
	// Catalog is used to flag user arguments that the workspace overrides
	// replace. Optional.
	Catalog *optioncatalog.Catalog
	// LogLevel filters the packager's own log records ("debug", "info", ...).
	// Empty or unparsable values mean info; callers validate it with
	// logrelay.ParseLevel.
	LogLevel string
}

// Packager runs packaging jobs. It holds no per-run state, so one Packager
// can serve concurrent Package calls.
type Packager struct {
	cfg   Config
	level zerolog.Level
}

// New returns a Packager for cfg.
func New(cfg Config) *Packager {
	if cfg.DefaultRecursionLimit <= 0 {
		cfg.DefaultRecursionLimit = DefaultRecursionLimit
	}
	if cfg.Move == nil {
		cfg.Move = artifact.Move
	}
	level, err := logrelay.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return &Packager{cfg: cfg, level: level}
}

// Result describes the outcome of one packaging run.
type Result struct {
	// Success is true when PyInstaller completed, even if moving its output failed.
	Success bool `json:"success"`
	// Workspace is the run directory PyInstaller worked in.
	Workspace string `json:"workspace,omitempty"`
	// OutputDirectory is the absolute directory the output was moved to.
	OutputDirectory string `json:"outputDirectory,omitempty"`
	// Argv is the argument vector handed to PyInstaller.
	Argv []string `json:"argv,omitempty"`
	// RecursionLimit is the limit the interpreter ran with.
	RecursionLimit int `json:"recursionLimit,omitempty"`
	// Moved lists the entries placed into OutputDirectory.
	Moved []string `json:"moved,omitempty"`
	// PackagingErr is set when PyInstaller could not run or failed.
	PackagingErr error `json:"-"`
	// RelocationErr is set when the output could not be moved.
	RelocationErr error `json:"-"`
}

// Err joins PackagingErr and RelocationErr.
func (r Result) Err() error {
	return errors.Join(r.PackagingErr, r.RelocationErr)
}

// run carries the output plumbing of a single Package call.
type run struct {
	relay  *logrelay.Relay
	lines  *logrelay.LineWriter
	logger zerolog.Logger
}

func (r *run) println(format string, a ...any) {
	_, _ = fmt.Fprintf(r.lines, format+"\n", a...)
}

func (r *run) printError(err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		r.println("%s", line)
	}
}

// Package runs PyInstaller with command and moves the result into
// settings.OutputDirectory. Every line of progress, tool output and error
// text is passed to out as it happens.
//
// The returned Result is successful unless PyInstaller itself could not run
// or failed; a failure to move the output is reported through
// Result.RelocationErr only.
func (p *Packager) Package(ctx context.Context, command string, settings Settings, out logrelay.OutputFunc) Result {
	relay := logrelay.New(out)
	r := &run{relay: relay, lines: logrelay.NewLineWriter(relay)}
	r.logger = logrelay.NewLogger(r.lines, p.level)
	defer func() { _ = r.lines.Close() }()

	result := Result{}

	r.println("Running autopack v%s", p.cfg.Version)

	ws, err := NewWorkspace(p.cfg.WorkspaceRoot)
	if err != nil {
		return p.fail(r, result, err)
	}
	result.Workspace = ws.Root
	if !p.cfg.KeepWorkspace {
		defer func() {
			if err := ws.Remove(); err != nil {
				r.logger.Warn().Msg(err.Error())
			}
		}()
	}

	r.println("Building directory: %s", ws.Root)
	r.println("Provided command: %s", command)

	outputDir, err := filepath.Abs(settings.OutputDirectory)
	if err != nil {
		return p.fail(r, result, fmt.Errorf("resolving output directory %q: %w", settings.OutputDirectory, err))
	}
	result.OutputDirectory = outputDir

	limit := p.cfg.DefaultRecursionLimit
	if settings.IncreaseRecursionLimit {
		limit = IncreasedRecursionLimit
		r.println("Recursion Limit is set to %d", limit)
	}
	result.RecursionLimit = limit

	inv, err := BuildInvocation(command, ws, limit)
	if err != nil {
		return p.fail(r, result, err)
	}
	p.reviewArgs(r, inv)

	result.Argv = inv.Argv()
	r.println("Executing: %s", strings.Join(result.Argv, " "))
	r.println("")

	if err := p.runTool(ctx, r, inv); err != nil {
		return p.fail(r, result, err)
	}

	r.println("")
	r.println("Moving project to: %s", outputDir)

	moved, err := p.cfg.Move(ws.DistPath, outputDir)
	result.Moved = moved
	if err != nil {
		result.RelocationErr = fmt.Errorf("%w: %w", ErrRelocationFailed, err)
		r.println("Failed to move project, traceback follows:")
		r.printError(err)
	} else {
		r.logger.Info().Msgf("Moved %d entries into %s", len(moved), outputDir)
	}

	result.Success = true
	return result
}

// runTool runs PyInstaller through its own LineWriter so a trailing partial
// line is flushed before the packager prints again.
func (p *Packager) runTool(ctx context.Context, r *run, inv Invocation) error {
	if p.cfg.Runner == nil {
		return errors.New("no runner configured")
	}

	tool := logrelay.NewLineWriter(r.relay)
	runErr := p.cfg.Runner.Run(ctx, inv, tool)
	closeErr := tool.Close()

	return errors.Join(runErr, closeErr)
}

// reviewArgs logs user arguments the workspace overrides replace, and flags
// the catalog does not know. The value following a known non-switch flag is
// skipped, so "--name -x" does not report "-x".
func (p *Packager) reviewArgs(r *run, inv Invocation) {
	if p.cfg.Catalog == nil {
		return
	}

	args := inv.UserArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}

		opt, ok := p.cfg.Catalog.Lookup(arg)
		if !ok {
			r.logger.Debug().Msgf("%s is not a known PyInstaller option", arg)
			continue
		}
		if p.cfg.Catalog.IsForced(arg) {
			r.logger.Warn().Msgf("%s is managed by autopack and will be overridden", arg)
		}
		if !opt.IsSwitch() && !strings.Contains(arg, "=") {
			i++
		}
	}
}

func (p *Packager) fail(r *run, result Result, err error) Result {
	result.Success = false
	result.PackagingErr = fmt.Errorf("%w: %w", ErrPackagingFailed, err)

	r.println("An error occurred, traceback follows:")
	r.printError(err)
	r.println("")
	r.println("Project output will not be moved to output folder")

	return result
}
