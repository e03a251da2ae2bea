// Copyright 2026 The ksync Authors.
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

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileOpts contains options for creating a log file.
type FileOpts interface {
	// Build constructs the log file path based on the given pattern.
	Build(logPattern string) string
}

// PatternOpts expands the variables understood in --debug-log patterns:
//
//	%TIMESTAMP%  start time, YYYYMMDD-HHMMSS.uuuuuu
//	%COMMAND%    name of the command being run
//	%RUN%        run identifier of the scenario
type PatternOpts struct {
	Start   time.Time
	Command string
	RunID   string
}

// Build implements FileOpts.Build.
func (o PatternOpts) Build(logPattern string) string {
	r := strings.NewReplacer(
		"%TIMESTAMP%", o.Start.Format("20060102-150405.000000"),
		"%COMMAND%", o.Command,
		"%RUN%", o.RunID,
	)
	return r.Replace(logPattern)
}

// OpenFile opens a log file using the specified flags. It uses opts to
// construct the log file path based on the given logPattern. A pattern that
// ends with a slash names a directory, and a per-command file is created in
// it.
func OpenFile(logPattern string, flags int, opts FileOpts) (*os.File, error) {
	if len(logPattern) == 0 {
		return nil, nil
	}
	if strings.HasSuffix(logPattern, "/") {
		logPattern += "ksync.log.%TIMESTAMP%.%COMMAND%"
	}

	logPath := opts.Build(logPattern)

	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0775); err != nil {
		return nil, fmt.Errorf("error creating dir %q: %w", dir, err)
	}

	f, err := os.OpenFile(logPath, flags, 0664)
	if err != nil {
		return nil, fmt.Errorf("error opening file %q: %w", logPath, err)
	}
	return f, nil
}
