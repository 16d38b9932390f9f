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

package packager

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultOutputDirectory is used by jobs that do not name an output directory.
const DefaultOutputDirectory = "output"

// Settings are the per-invocation options that shape a packaging run.
type Settings struct {
	// IncreaseRecursionLimit raises PyInstaller's recursion limit to IncreasedRecursionLimit.
	IncreaseRecursionLimit bool `json:"increaseRecursionLimit" yaml:"increaseRecursionLimit"`
	// OutputDirectory receives the bundled application. Relative paths are
	// resolved against the current working directory.
	OutputDirectory string `json:"outputDirectory" yaml:"outputDirectory"`
}

// Job is a prepared packaging run: the PyInstaller command plus its settings.
type Job struct {
	// Command is the shell-style PyInstaller command, e.g. "pyinstaller --onefile app.py".
	Command  string `yaml:"command"`
	Settings `yaml:",inline"`
}

// ValidationError describes one invalid settings field.
type ValidationError struct {
	// Field is the name of the offending field.
	Field string `json:"field"`
	// Message describes the validation failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var errInvalidSettings = errors.New("invalid settings")

// SettingsFromMap converts the settings mapping a UI sends into Settings.
// Recognized keys are increaseRecursionLimit (bool, optional) and
// outputDirectory (non-empty string, required). Other keys are ignored.
func SettingsFromMap(m map[string]interface{}) (Settings, error) {
	var errs []error

	increase, verr := validateBool(m, "increaseRecursionLimit")
	if verr != nil {
		errs = append(errs, verr)
	}

	output, verr := validateStringRequired(m, "outputDirectory")
	if verr != nil {
		errs = append(errs, verr)
	}

	if len(errs) > 0 {
		return Settings{}, errors.Join(append(errs, errInvalidSettings)...)
	}

	return Settings{
		IncreaseRecursionLimit: increase,
		OutputDirectory:        output,
	}, nil
}

// LoadJob reads a job file. Unknown fields are rejected and a missing
// output directory defaults to DefaultOutputDirectory.
func LoadJob(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("reading job file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var job Job
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("parsing job file %s: %w", path, err)
	}

	if strings.TrimSpace(job.Command) == "" {
		return Job{}, errors.Join(ValidationError{Field: "command", Message: "required field is missing"}, errInvalidSettings)
	}

	if job.OutputDirectory == "" {
		job.OutputDirectory = DefaultOutputDirectory
	}

	return job, nil
}

func validateBool(m map[string]interface{}, field string) (bool, *ValidationError) {
	val, ok := m[field]
	if !ok || val == nil {
		return false, nil
	}

	b, ok := val.(bool)
	if !ok {
		return false, &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected bool, got %T", val),
		}
	}

	return b, nil
}

func validateStringRequired(m map[string]interface{}, field string) (string, *ValidationError) {
	val, ok := m[field]
	if !ok {
		return "", &ValidationError{
			Field:   field,
			Message: "required field is missing",
		}
	}

	str, ok := val.(string)
	if !ok {
		return "", &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected string, got %T", val),
		}
	}

	if str == "" {
		return "", &ValidationError{
			Field:   field,
			Message: "required field cannot be empty",
		}
	}

	return str, nil
}
