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

package logrelay

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var levelNames = map[string]string{
	"trace": "TRACE",
	"debug": "DEBUG",
	"info":  "INFO",
	"warn":  "WARNING",
	"error": "ERROR",
	"fatal": "CRITICAL",
	"panic": "CRITICAL",
}

// NewLogger returns a zerolog.Logger rendering each record as a single
// "<elapsed-ms> <LEVEL>: <message>" line on w, where elapsed is measured from
// the moment the logger was created.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	start := time.Now()

	console := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: true,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprint(i)
		},
		FormatLevel: func(i interface{}) string {
			name, ok := levelNames[fmt.Sprint(i)]
			if !ok {
				name = strings.ToUpper(fmt.Sprint(i))
			}
			return name + ":"
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	}

	elapsed := zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Int64(zerolog.TimestampFieldName, time.Since(start).Milliseconds())
	})

	return zerolog.New(console).Level(level).Hook(elapsed)
}

// ParseLevel parses a level name such as "debug" or "info". The printed
// names "warning" and "critical" are accepted too. An empty name yields
// zerolog.InfoLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	lower := strings.ToLower(name)
	switch lower {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "critical":
		return zerolog.FatalLevel, nil
	}

	level, err := zerolog.ParseLevel(lower)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}
