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
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/alexandremahdhaoui/autopack/pkg/artifact"
	"github.com/spf13/pflag"
)

var errCheckUsage = errors.New("usage: check-overwrite --output DIR [--onefile] FILE")

// runCheckOverwrite implements "autopack check-overwrite". It prints true or
// false and only fails when the check itself could not be made.
func (a *app) runCheckOverwrite(args []string) error {
	fs := pflag.NewFlagSet("check-overwrite", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)

	output := fs.StringP("output", "o", "", "output directory the bundle would be moved to")
	oneFile := fs.BoolP("onefile", "F", false, "the bundle is a single executable")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" || fs.NArg() != 1 {
		return errCheckUsage
	}

	overwrite, err := artifact.WillOverwrite(fs.Arg(0), *oneFile, *output)
	if err != nil {
		return err
	}

	if overwrite {
		a.logf("%s already exists in %s", artifact.OutputName(fs.Arg(0), *oneFile, runtime.GOOS), *output)
	}
	_, _ = fmt.Fprintln(a.stdout, strconv.FormatBool(overwrite))
	return nil
}
