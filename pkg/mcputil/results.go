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

// Package mcputil builds the CallToolResult values autopack's MCP tools return.
package mcputil

import (
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult creates an MCP error result carrying message.
//
// Example usage:
//
//	return mcputil.ErrorResult(fmt.Sprintf("invalid settings: %v", err)), nil, nil
func ErrorResult(message string) *mcp.CallToolResult {
	return textResult(message, true)
}

// SuccessResultWithArtifact creates a success result that also returns a
// structured artifact (an option list or a collision verdict).
//
// Example usage:
//
//	result, artifact := mcputil.SuccessResultWithArtifact("3 options", options)
//	return result, artifact, nil
func SuccessResultWithArtifact(message string, artifact any) (*mcp.CallToolResult, any) {
	return textResult(message, false), artifact
}

// LinesResult joins lines into a single text content. The result is an
// error result when isError is set.
func LinesResult(lines []string, isError bool) *mcp.CallToolResult {
	return textResult(strings.Join(lines, "\n"), isError)
}

func textResult(message string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: isError,
	}
}
