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
	"fmt"
	"runtime"

	"github.com/alexandremahdhaoui/autopack/internal/mcpserver"
	"github.com/alexandremahdhaoui/autopack/pkg/artifact"
	"github.com/alexandremahdhaoui/autopack/pkg/mcputil"
	"github.com/alexandremahdhaoui/autopack/pkg/optioncatalog"
	"github.com/alexandremahdhaoui/autopack/pkg/packager"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetOptionsInput is the input of the getOptions tool.
type GetOptionsInput struct {
	Group string `json:"group,omitempty" jsonschema:"only return options of this group: general, makespec, build, log or positional"`
}

// WillOverwriteInput is the input of the willOverwrite tool.
type WillOverwriteInput struct {
	FilePath        string `json:"filePath" jsonschema:"path of the script being packaged"`
	OneFile         bool   `json:"oneFile,omitempty" jsonschema:"whether the bundle is a single executable"`
	OutputDirectory string `json:"outputDirectory" jsonschema:"directory the bundle will be moved to"`
}

// WillOverwriteOutput is the structured result of the willOverwrite tool.
type WillOverwriteOutput struct {
	WillOverwrite bool   `json:"willOverwrite"`
	Name          string `json:"name"`
}

// PackageInput is the input of the package tool.
type PackageInput struct {
	Command  string         `json:"command" jsonschema:"PyInstaller command, e.g. pyinstaller --onefile app.py"`
	Settings map[string]any `json:"settings" jsonschema:"increaseRecursionLimit (bool) and outputDirectory (string, required)"`
}

// PackageOutput is the structured result of the package tool.
type PackageOutput struct {
	Success         bool            `json:"success"`
	Lines           []string        `json:"lines"`
	Result          packager.Result `json:"result"`
	Error           string          `json:"error,omitempty"`
	RelocationError string          `json:"relocationError,omitempty"`
}

// runMCPServer starts the autopack MCP server with stdio transport.
func (a *app) runMCPServer() error {
	server := mcpserver.New(Name, Version)
	a.registerTools(server)
	return server.RunStdio(context.Background())
}

func (a *app) registerTools(server *mcpserver.Server) {
	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "getOptions",
		Description: "List the PyInstaller options a packaging command can use",
	}, a.handleGetOptions)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "willOverwrite",
		Description: "Report whether packaging a script would replace an entry in the output directory",
	}, a.handleWillOverwrite)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "package",
		Description: "Run PyInstaller and move the bundled application into the output directory",
	}, a.handlePackage)
}

func (a *app) handleGetOptions(_ context.Context, _ *mcp.CallToolRequest, input GetOptionsInput) (*mcp.CallToolResult, any, error) {
	catalog, err := optioncatalog.Load()
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("loading options: %v", err)), nil, nil
	}

	filtered, err := catalog.Group(input.Group)
	if err != nil {
		return mcputil.ErrorResult(err.Error()), nil, nil
	}

	msg := fmt.Sprintf("%d options (schema %s, PyInstaller %s)",
		len(filtered.Options), filtered.SchemaVersion, filtered.PyInstaller)

	result, out := mcputil.SuccessResultWithArtifact(msg, filtered)
	return result, out, nil
}

func (a *app) handleWillOverwrite(_ context.Context, _ *mcp.CallToolRequest, input WillOverwriteInput) (*mcp.CallToolResult, any, error) {
	if input.FilePath == "" || input.OutputDirectory == "" {
		return mcputil.ErrorResult("filePath and outputDirectory are required"), nil, nil
	}

	overwrite, err := artifact.WillOverwrite(input.FilePath, input.OneFile, input.OutputDirectory)
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("checking %s: %v", input.OutputDirectory, err)), nil, nil
	}

	out := WillOverwriteOutput{
		WillOverwrite: overwrite,
		Name:          artifact.OutputName(input.FilePath, input.OneFile, runtime.GOOS),
	}

	msg := fmt.Sprintf("%s does not exist in %s", out.Name, input.OutputDirectory)
	if overwrite {
		msg = fmt.Sprintf("%s already exists in %s and will be replaced", out.Name, input.OutputDirectory)
	}

	result, artifactOut := mcputil.SuccessResultWithArtifact(msg, out)
	return result, artifactOut, nil
}

func (a *app) handlePackage(ctx context.Context, _ *mcp.CallToolRequest, input PackageInput) (*mcp.CallToolResult, any, error) {
	settings, err := packager.SettingsFromMap(input.Settings)
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("invalid settings: %v", err)), nil, nil
	}

	p, err := a.newPackager(false)
	if err != nil {
		return mcputil.ErrorResult(err.Error()), nil, nil
	}

	a.logf("Packaging: %s", input.Command)

	// Package serializes calls to the output function.
	lines := []string{}
	result := p.Package(ctx, input.Command, settings, func(line string) {
		lines = append(lines, line)
		_, _ = fmt.Fprintln(a.stderr, line)
	})

	out := PackageOutput{
		Success: result.Success,
		Lines:   lines,
		Result:  result,
	}
	if result.PackagingErr != nil {
		out.Error = result.PackagingErr.Error()
	}
	if result.RelocationErr != nil {
		out.RelocationError = result.RelocationErr.Error()
	}

	return mcputil.LinesResult(lines, !result.Success), out, nil
}
