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

package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alexandremahdhaoui/autopack/internal/version"
)

// Command is one subcommand of a binary.
type Command struct {
	// Name is the first argument that selects the command.
	Name string
	// Usage is the synopsis shown in help output, without the binary name.
	Usage string
	// Summary is a one-line description.
	Summary string
	// Run receives the arguments following Name.
	Run func(args []string) error
}

// Config holds the configuration for CLI bootstrap.
type Config struct {
	// Name is the binary name.
	Name string
	// Description is printed under the usage header.
	Description string

	// Version information (typically set via ldflags)
	Version        string
	CommitSHA      string
	BuildTimestamp string

	// Commands are the subcommands the binary dispatches to.
	Commands []Command

	// RunMCP is the function to execute in MCP server mode (optional)
	// If nil, --mcp flag will result in an error
	RunMCP func() error

	// FailureHandler is called when a command returns an error (optional)
	// Defaults to printing "Error: <err>" to Stderr
	FailureHandler func(error)

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Bootstrap runs the binary described by cfg with os.Args and exits.
//
// This function will call os.Exit and never return.
func Bootstrap(cfg Config) {
	os.Exit(Run(cfg, os.Args[1:]))
}

// Run dispatches args and returns the process exit code.
func Run(cfg Config, args []string) int {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.FailureHandler == nil {
		cfg.FailureHandler = func(err error) {
			_, _ = fmt.Fprintf(cfg.Stderr, "Error: %v\n", err)
		}
	}

	if len(args) == 0 {
		PrintUsage(cfg, cfg.Stderr)
		return 1
	}

	switch args[0] {
	case "version", "--version", "-v":
		info := version.New(cfg.Name)
		info.Version = cfg.Version
		info.CommitSHA = cfg.CommitSHA
		info.BuildTimestamp = cfg.BuildTimestamp
		info.Fprint(cfg.Stdout)
		return 0

	case "help", "--help", "-h":
		PrintUsage(cfg, cfg.Stdout)
		return 0

	case "--mcp":
		if cfg.RunMCP == nil {
			log.Printf("Error: MCP mode not supported for %s", cfg.Name)
			return 1
		}
		if err := cfg.RunMCP(); err != nil {
			log.Printf("MCP server error: %v", err)
			return 1
		}
		return 0
	}

	for _, cmd := range cfg.Commands {
		if cmd.Name != args[0] {
			continue
		}
		if err := cmd.Run(args[1:]); err != nil {
			cfg.FailureHandler(err)
			return 1
		}
		return 0
	}

	_, _ = fmt.Fprintf(cfg.Stderr, "Unknown command: %s\n", args[0])
	PrintUsage(cfg, cfg.Stderr)
	return 1
}

// PrintUsage writes the command synopsis of cfg to w.
func PrintUsage(cfg Config, w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s - %s\n\nUsage:\n", cfg.Name, cfg.Description)

	width := len("version")
	for _, cmd := range cfg.Commands {
		if len(cmd.Usage) > width {
			width = len(cmd.Usage)
		}
	}

	for _, cmd := range cfg.Commands {
		_, _ = fmt.Fprintf(w, "  %s %-*s  %s\n", cfg.Name, width, cmd.Usage, cmd.Summary)
	}
	if cfg.RunMCP != nil {
		_, _ = fmt.Fprintf(w, "  %s %-*s  %s\n", cfg.Name, width, "--mcp", "Run as MCP server")
	}
	_, _ = fmt.Fprintf(w, "  %s %-*s  %s\n", cfg.Name, width, "version", "Show version information")
}
