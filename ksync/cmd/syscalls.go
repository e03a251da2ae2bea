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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"

	"ksync.dev/ksync/ksync/flag"
	"ksync.dev/ksync/pkg/sentry/kernel"
)

// Syscalls implements subcommands.Command for the "syscalls" command.
type Syscalls struct {
	output string
	os     string
	arch   string
}

// CompatibilityInfo is a map of system and architecture to compatibility doc.
// Maps operating system to architecture to ArchInfo.
type CompatibilityInfo map[string]map[string]ArchInfo

// ArchInfo is compatibility doc for an architecture.
type ArchInfo struct {
	// Syscalls maps syscall number for the architecture to the doc.
	Syscalls map[uintptr]SyscallDoc `json:"syscalls"`
}

// SyscallDoc represents a single item of syscall documentation.
type SyscallDoc struct {
	Name string `json:"name"`
	num  uintptr

	Support string `json:"support"`
	Note    string `json:"note,omitempty"`
}

type outputFunc func(io.Writer, CompatibilityInfo) error

var (
	// The string name to use for printing compatibility for all OSes.
	osAll = "all"

	// The string name to use for printing compatibility for all architectures.
	archAll = "all"

	// A map of output type names to output functions.
	outputMap = map[string]outputFunc{
		"table": outputTable,
		"json":  outputJSON,
		"csv":   outputCSV,
	}
)

// Name implements subcommands.Command.Name.
func (*Syscalls) Name() string {
	return "syscalls"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Syscalls) Synopsis() string {
	return "Print compatibility information for syscalls."
}

// Usage implements subcommands.Command.Usage.
func (*Syscalls) Usage() string {
	return `syscalls [options] - Print compatibility information for syscalls.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Syscalls) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.output, "o", "table", "Output format (table, csv, json).")
	f.StringVar(&s.os, "os", osAll, "The OS (e.g. rcore)")
	f.StringVar(&s.arch, "arch", archAll, "The CPU architecture (e.g. riscv64).")
}

// Execute implements subcommands.Command.Execute.
func (s *Syscalls) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	out, ok := outputMap[s.output]
	if !ok {
		Fatalf("Unsupported output format %q", s.output)
	}

	info, err := getCompatibilityInfo(tableMap(kernel.SyscallTables()), s.os, s.arch)
	if err != nil {
		Fatalf("%v", err)
	}

	if err := out(os.Stdout, info); err != nil {
		Fatalf("Error writing output: %v", err)
	}

	return subcommands.ExitSuccess
}

// tableMap builds a map of OS name to architecture name to syscall table.
func tableMap(tables []*kernel.SyscallTable) map[string]map[string]*kernel.SyscallTable {
	m := make(map[string]map[string]*kernel.SyscallTable)
	for _, t := range tables {
		osMap, ok := m[t.OS]
		if !ok {
			osMap = make(map[string]*kernel.SyscallTable)
			m[t.OS] = osMap
		}
		osMap[t.Arch] = t
	}
	return m
}

// getCompatibilityInfo returns compatibility info for the given OS name and
// architecture name. Supports the special name 'all' for OS and architecture
// that specifies that all supported OSes or architectures should be included.
func getCompatibilityInfo(tables map[string]map[string]*kernel.SyscallTable, osName, archName string) (CompatibilityInfo, error) {
	info := make(CompatibilityInfo)
	osNames := []string{osName}
	if osName == osAll {
		osNames = osNames[:0]
		for name := range tables {
			osNames = append(osNames, name)
		}
	}
	for _, osName := range osNames {
		archs, ok := tables[osName]
		if !ok {
			return nil, fmt.Errorf("syscall tables for %s not found", osName)
		}
		archNames := []string{archName}
		if archName == archAll {
			archNames = archNames[:0]
			for name := range archs {
				archNames = append(archNames, name)
			}
		}
		info[osName] = make(map[string]ArchInfo)
		for _, archName := range archNames {
			t, ok := archs[archName]
			if !ok {
				return nil, fmt.Errorf("syscall table for %s/%s not found", osName, archName)
			}
			info[osName][archName] = getArchInfo(t)
		}
	}
	return info, nil
}

// getArchInfo returns compatibility info for a specific OS and architecture.
func getArchInfo(t *kernel.SyscallTable) ArchInfo {
	info := ArchInfo{Syscalls: make(map[uintptr]SyscallDoc)}
	for num, sc := range t.Table {
		info.Syscalls[num] = SyscallDoc{
			Name:    sc.Name,
			num:     num,
			Support: sc.SupportLevel.String(),
			Note:    sc.Note,
		}
	}
	return info
}

// sortedCalls returns the syscalls of an architecture in number order.
func sortedCalls(archInfo ArchInfo) []SyscallDoc {
	calls := make([]SyscallDoc, 0, len(archInfo.Syscalls))
	for _, sc := range archInfo.Syscalls {
		calls = append(calls, sc)
	}
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].num < calls[j].num
	})
	return calls
}

// sortedKeys returns the keys of m in order, so output is stable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// outputTable outputs the syscall info in tabular format.
func outputTable(w io.Writer, info CompatibilityInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, osName := range sortedKeys(info) {
		for _, archName := range sortedKeys(info[osName]) {
			// Print the OS/arch
			fmt.Fprintf(w, "%s/%s:\n\n", osName, archName)

			// Write the header
			_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				"NUM",
				"NAME",
				"SUPPORT",
				"NOTE",
			)
			if err != nil {
				return err
			}

			// Write each syscall entry
			for _, sc := range sortedCalls(info[osName][archName]) {
				_, err = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					strconv.FormatInt(int64(sc.num), 10),
					sc.Name,
					sc.Support,
					sc.Note,
				)
				if err != nil {
					return err
				}
			}

			if err := tw.Flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

// outputJSON outputs the syscall info in JSON format.
func outputJSON(w io.Writer, info CompatibilityInfo) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(info)
}

// outputCSV outputs the syscall info in CSV format.
func outputCSV(w io.Writer, info CompatibilityInfo) error {
	csvWriter := csv.NewWriter(w)

	// Write the header
	err := csvWriter.Write([]string{
		"OS",
		"Arch",
		"Num",
		"Name",
		"Support",
		"Note",
	})
	if err != nil {
		return err
	}

	for _, osName := range sortedKeys(info) {
		for _, archName := range sortedKeys(info[osName]) {
			for _, sc := range sortedCalls(info[osName][archName]) {
				err = csvWriter.Write([]string{
					osName,
					archName,
					strconv.FormatInt(int64(sc.num), 10),
					sc.Name,
					sc.Support,
					sc.Note,
				})
				if err != nil {
					return err
				}
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
