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

package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/alexandremahdhaoui/autopack/internal/cmdutil"
)

const (
	devVersion = "dev"
	unknown    = "unknown"
)

// Info holds the build identity of the autopack binary.
type Info struct {
	// ToolName is the binary name.
	ToolName string `json:"toolName"`
	// Version is set via ldflags.
	Version string `json:"version"`
	// CommitSHA is set via ldflags.
	CommitSHA string `json:"commitSHA"`
	// BuildTimestamp is set via ldflags.
	BuildTimestamp string `json:"buildTimestamp"`
}

// New returns an Info carrying the ldflags defaults.
func New(toolName string) *Info {
	return &Info{
		ToolName:       toolName,
		Version:        devVersion,
		CommitSHA:      unknown,
		BuildTimestamp: unknown,
	}
}

// Resolve fills in values that were not set via ldflags, first from the
// module build info and then from the git checkout in the working directory.
func (i *Info) Resolve() Info {
	out := *i

	if info, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(&out, info)
	}

	if out.Version == devVersion {
		if v := git("describe", "--tags", "--always", "--dirty"); v != "" {
			out.Version = v
		}
	}
	if out.CommitSHA == unknown {
		if c := git("rev-parse", "--short", "HEAD"); c != "" {
			out.CommitSHA = c
		}
	}

	return out
}

func applyBuildInfo(out *Info, info *debug.BuildInfo) {
	if out.Version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}

	var revision string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			if out.BuildTimestamp == unknown {
				out.BuildTimestamp = setting.Value
			}
		}
	}

	if revision == "" {
		return
	}
	short := revision
	if len(short) > 7 {
		short = short[:7]
	}
	if out.CommitSHA == unknown {
		out.CommitSHA = short
	}
	if out.Version == devVersion {
		out.Version = short
	}
}

func git(args ...string) string {
	output := cmdutil.ExecuteCommand(cmdutil.ExecuteInput{Command: "git", Args: args})
	if output.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(output.Stdout)
}

// Fprint writes the resolved version block to w.
func (i *Info) Fprint(w io.Writer) {
	r := i.Resolve()
	_, _ = fmt.Fprintf(w, "%s version %s\n", r.ToolName, r.Version)
	_, _ = fmt.Fprintf(w, "  commit:    %s\n", r.CommitSHA)
	_, _ = fmt.Fprintf(w, "  built:     %s\n", r.BuildTimestamp)
	_, _ = fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
	_, _ = fmt.Fprintf(w, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// String returns a one-line version string using the explicitly set Version field.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s", i.ToolName, i.Version)
}
