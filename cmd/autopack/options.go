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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alexandremahdhaoui/autopack/pkg/optioncatalog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	errUnknownFormat      = errors.New("unknown output format")
	errUnsupportedVersion = errors.New("installed PyInstaller is outside the range the option schema was written for")
)

// runOptions implements "autopack options".
func (a *app) runOptions(args []string) error {
	fs := pflag.NewFlagSet("options", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)

	format := fs.StringP("format", "f", "json", "output format: json or yaml")
	group := fs.StringP("group", "g", "", "only print options of this group: general, makespec, build, log or positional")
	check := fs.Bool("check", false, "check the installed PyInstaller against the schema instead of printing it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := optioncatalog.Load()
	if err != nil {
		return err
	}

	if *check {
		return a.checkToolVersion(context.Background(), catalog)
	}

	filtered, err := catalog.Group(*group)
	if err != nil {
		return err
	}

	return writeCatalog(a.stdout, filtered, *format)
}

func writeCatalog(w io.Writer, catalog *optioncatalog.Catalog, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (want json or yaml)", errUnknownFormat, format)
	}
}

func (a *app) checkToolVersion(ctx context.Context, catalog *optioncatalog.Catalog) error {
	envs, err := a.config()
	if err != nil {
		return err
	}

	toolVersion, err := a.detectVersion(ctx, envs.Python)
	if err != nil {
		return err
	}

	ok, err := catalog.Supports(toolVersion)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: PyInstaller %s, schema %s supports %s",
			errUnsupportedVersion, toolVersion, catalog.SchemaVersion, catalog.PyInstaller)
	}

	_, _ = fmt.Fprintf(a.stdout, "PyInstaller %s matches option schema %s (%s)\n",
		toolVersion, catalog.SchemaVersion, catalog.PyInstaller)
	return nil
}
