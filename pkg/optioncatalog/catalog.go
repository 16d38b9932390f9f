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

// Package optioncatalog describes the command-line options PyInstaller
// accepts, as plain serializable records a UI can render.
//
// The catalog is an explicit, versioned schema embedded in the binary rather
// than something discovered by introspecting PyInstaller at runtime. The
// schema records the PyInstaller version range it was written against; use
// Supports to detect drift against the installed tool.
package optioncatalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"sigs.k8s.io/yaml"
)

//go:embed options.yaml
var optionsYAML []byte

// Option groups.
const (
	GroupGeneral    = "general"
	GroupMakespec   = "makespec"
	GroupBuild      = "build"
	GroupLog        = "log"
	GroupPositional = "positional"
)

// Groups lists the option groups in the order PyInstaller declares them.
var Groups = []string{GroupGeneral, GroupMakespec, GroupBuild, GroupLog, GroupPositional}

// ForcedFlags are the flags autopack appends to every invocation to pin the
// build into its workspace. User-supplied values for them are overridden.
var ForcedFlags = []string{"--distpath", "--workpath", "--specpath"}

// Option mirrors one argparse action of PyInstaller's parser.
type Option struct {
	// OptionStrings lists every spelling of the flag. Empty for positionals.
	OptionStrings []string `json:"option_strings" yaml:"option_strings"`
	// Dest is the attribute name the parsed value is stored under.
	Dest string `json:"dest" yaml:"dest"`
	// Nargs is nil (exactly one value), 0 (a switch), or one of "?", "*", "+".
	Nargs any `json:"nargs" yaml:"nargs"`
	// Const is the value stored by switches.
	Const any `json:"const,omitempty" yaml:"const,omitempty"`
	// Default is the value used when the flag is absent.
	Default any `json:"default" yaml:"default"`
	// Type names the value conversion ("int"); empty means string.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Choices restricts the accepted values.
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	// Required is only true for the positional script names.
	Required bool `json:"required" yaml:"required"`
	// Help is the human-readable description.
	Help string `json:"help" yaml:"help"`
	// Metavar is the value placeholder shown in usage text.
	Metavar string `json:"metavar,omitempty" yaml:"metavar,omitempty"`
	// Group is the PyInstaller option group the flag belongs to.
	Group string `json:"group" yaml:"group"`
}

// IsSwitch reports whether the option takes no value.
func (o Option) IsSwitch() bool {
	switch n := o.Nargs.(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	default:
		return false
	}
}

// IsPositional reports whether the option is a positional argument.
func (o Option) IsPositional() bool {
	return len(o.OptionStrings) == 0
}

// Catalog is the versioned set of PyInstaller options.
type Catalog struct {
	// SchemaVersion is the semver of this schema document.
	SchemaVersion string `json:"schemaVersion" yaml:"schemaVersion"`
	// PyInstaller is the semver constraint of PyInstaller releases the schema matches.
	PyInstaller string `json:"pyinstaller" yaml:"pyinstaller"`
	// Options lists every option, in PyInstaller's parser order.
	Options []Option `json:"options" yaml:"options"`
}

var (
	errLoadingCatalog  = errors.New("loading option catalog")
	errInvalidCatalog  = errors.New("invalid option catalog")
	errCheckingVersion = errors.New("checking PyInstaller version")
	errUnknownGroup    = errors.New("unknown option group")
)

// Load parses the embedded option schema.
func Load() (*Catalog, error) {
	return Parse(optionsYAML)
}

// Parse decodes and validates a catalog document. Unknown fields are rejected.
func Parse(b []byte) (*Catalog, error) {
	out := Catalog{} //nolint:exhaustruct // unmarshal

	if err := yaml.UnmarshalStrict(b, &out); err != nil {
		return nil, errors.Join(err, errLoadingCatalog)
	}

	if err := out.Validate(); err != nil {
		return nil, errors.Join(err, errInvalidCatalog, errLoadingCatalog)
	}

	return &out, nil
}

// Validate checks the catalog for internal consistency.
func (c *Catalog) Validate() error {
	var errs []error

	if _, err := semver.NewVersion(c.SchemaVersion); err != nil {
		errs = append(errs, fmt.Errorf("schemaVersion %q: %w", c.SchemaVersion, err))
	}
	if _, err := semver.NewConstraint(c.PyInstaller); err != nil {
		errs = append(errs, fmt.Errorf("pyinstaller constraint %q: %w", c.PyInstaller, err))
	}

	seen := make(map[string]int, len(c.Options))
	for i, opt := range c.Options {
		if opt.Dest == "" {
			errs = append(errs, fmt.Errorf("options[%d]: dest is required", i))
		}
		if !IsGroup(opt.Group) {
			errs = append(errs, fmt.Errorf("options[%d]: %w %q", i, errUnknownGroup, opt.Group))
		}
		switch {
		case opt.IsPositional() && opt.Group != GroupPositional:
			errs = append(errs, fmt.Errorf("options[%d]: positional %q must use group %q", i, opt.Dest, GroupPositional))
		case !opt.IsPositional() && opt.Group == GroupPositional:
			errs = append(errs, fmt.Errorf("options[%d]: group %q must not declare option strings", i, GroupPositional))
		}
		for _, s := range opt.OptionStrings {
			if !strings.HasPrefix(s, "-") {
				errs = append(errs, fmt.Errorf("options[%d]: option string %q must start with '-'", i, s))
			}
			if prev, dup := seen[s]; dup {
				errs = append(errs, fmt.Errorf("options[%d]: option string %q already declared by options[%d]", i, s, prev))
			}
			seen[s] = i
		}
	}

	return errors.Join(errs...)
}

// IsGroup reports whether name is one of Groups.
func IsGroup(name string) bool {
	for _, g := range Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Group returns a copy of the catalog holding only the options of group. An
// empty group returns the catalog itself.
func (c *Catalog) Group(group string) (*Catalog, error) {
	if group == "" {
		return c, nil
	}
	if !IsGroup(group) {
		return nil, fmt.Errorf("%w %q (want one of %s)", errUnknownGroup, group, strings.Join(Groups, ", "))
	}

	out := &Catalog{
		SchemaVersion: c.SchemaVersion,
		PyInstaller:   c.PyInstaller,
		Options:       []Option{},
	}
	for _, opt := range c.Options {
		if opt.Group == group {
			out.Options = append(out.Options, opt)
		}
	}
	return out, nil
}

// Lookup returns the option matching a command-line token such as "-F",
// "--name" or "--name=app".
func (c *Catalog) Lookup(token string) (Option, bool) {
	flag := token
	if strings.HasPrefix(flag, "--") {
		if i := strings.IndexByte(flag, '='); i >= 0 {
			flag = flag[:i]
		}
	}

	for _, opt := range c.Options {
		for _, s := range opt.OptionStrings {
			if s == flag {
				return opt, true
			}
		}
	}

	return Option{}, false
}

// IsForced reports whether token sets one of the ForcedFlags.
func (c *Catalog) IsForced(token string) bool {
	opt, ok := c.Lookup(token)
	if !ok {
		return false
	}
	for _, forced := range ForcedFlags {
		for _, s := range opt.OptionStrings {
			if s == forced {
				return true
			}
		}
	}
	return false
}

// Supports reports whether toolVersion falls inside the PyInstaller range
// the catalog was written against.
func (c *Catalog) Supports(toolVersion string) (bool, error) {
	constraint, err := semver.NewConstraint(c.PyInstaller)
	if err != nil {
		return false, errors.Join(err, errCheckingVersion)
	}

	version, err := semver.NewVersion(strings.TrimSpace(toolVersion))
	if err != nil {
		return false, errors.Join(fmt.Errorf("parsing version %q: %w", toolVersion, err), errCheckingVersion)
	}

	return constraint.Check(version), nil
}
