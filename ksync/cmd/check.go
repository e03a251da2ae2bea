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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/subcommands"

	"ksync.dev/ksync/ksync/flag"
	"ksync.dev/ksync/pkg/sentry/kernel/banker"
)

// Check implements subcommands.Command for the "check" command.
type Check struct {
	output string
}

// Name implements subcommands.Command.Name.
func (*Check) Name() string {
	return "check"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Check) Synopsis() string {
	return "run the deadlock safety check on a stored resource matrix"
}

// Usage implements subcommands.Command.Usage.
func (*Check) Usage() string {
	return `check [flags] <matrix.toml> - run the safety check on a resource matrix.

The file holds the arrays available, allocation and need, and optionally
total. When total is missing it is derived from the other three. The exit
status is 0 for a safe state and 1 for an unsafe one.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *Check) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "text", "Output format (text, json).")
}

// Execute implements subcommands.Command.Execute.
func (c *Check) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if c.output != "text" && c.output != "json" {
		Fatalf("Unsupported output format %q", c.output)
	}
	m, err := loadMatrix(f.Arg(0))
	if err != nil {
		Fatalf("%v", err)
	}
	res := m.Safe()
	if err := writeResult(os.Stdout, c.output, res); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	if !res.Safe {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadMatrix reads a matrix file and validates it.
func loadMatrix(path string) (*banker.Matrix, error) {
	var m banker.Matrix
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("reading matrix %q: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("matrix %q: unknown keys %v", path, keys)
	}
	if !md.IsDefined("total") {
		m.Total = append([]int(nil), m.Available...)
		for _, row := range m.Allocation {
			for r, a := range row {
				if r < len(m.Total) {
					m.Total[r] += a
				}
			}
		}
	}
	if err := m.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("matrix %q: %w", path, err)
	}
	return &m, nil
}

func writeResult(w io.Writer, format string, res banker.Result) error {
	if format == "json" {
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(struct {
			Safe    bool  `json:"safe"`
			Order   []int `json:"order"`
			Blocked []int `json:"blocked,omitempty"`
		}{res.Safe, res.Order, res.Blocked})
	}
	_, err := fmt.Fprintln(w, res)
	return err
}
