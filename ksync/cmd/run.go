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
	"fmt"
	"io"

	"github.com/google/subcommands"

	"ksync.dev/ksync/ksync/boot"
	"ksync.dev/ksync/ksync/config"
	"ksync.dev/ksync/ksync/flag"
	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/metric"
)

// Run implements subcommands.Command for the "run" command.
type Run struct {
	output string
}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "run a scenario and print its report"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [flags] <scenario.yaml> - boot a kernel, run the scenario's threads and print a JSON report.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Run) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.output, "o", "-", "file the JSON report is written to, '-' for stdout.")
}

// Execute implements subcommands.Command.Execute.
func (r *Run) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	runID := args[1].(string)

	s, err := boot.Load(f.Arg(0))
	if err != nil {
		Fatalf("%v", err)
	}
	report, err := runScenario(ctx, conf, runID, s)
	if err != nil {
		Fatalf("running scenario: %v", err)
	}

	out, err := createOutput(r.output)
	if err != nil {
		Fatalf("error creating report: %v", err)
	}
	defer out.Close()
	if err := report.WriteJSON(out); err != nil {
		Fatalf("error writing report: %v", err)
	}
	if conf.Metrics != "" {
		if err := writeMetrics(conf.Metrics); err != nil {
			Fatalf("error writing metrics: %v", err)
		}
	}

	if !report.OK() {
		log.Warningf("Scenario %q: %d failed expectations, invariants %q", s.Name, report.Failures, report.Invariants)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runScenario(ctx context.Context, conf *config.Config, runID string, s *boot.Scenario) (*boot.Report, error) {
	if conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Timeout)
		defer cancel()
	}
	l, err := boot.New(boot.Args{
		Scenario:       s,
		RunID:          runID,
		Tick:           conf.Tick,
		DeadlockDetect: conf.DeadlockDetect,
	})
	if err != nil {
		return nil, err
	}
	return l.Run(ctx)
}

func writeMetrics(path string) (retErr error) {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	return writeMetricsTo(out)
}

func writeMetricsTo(w io.Writer) error {
	if err := metric.WriteText(w); err != nil {
		return fmt.Errorf("exporting metrics: %w", err)
	}
	return nil
}
