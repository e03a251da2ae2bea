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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ksync.dev/ksync/ksync/boot"
	"ksync.dev/ksync/ksync/config"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/kernel/banker"
	"ksync.dev/ksync/pkg/sentry/syscalls/rv64"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMatrix(t *testing.T) {
	for _, tc := range []struct {
		name     string
		contents string
		want     banker.Result
	}{
		{
			name: "safe",
			contents: `
available = [3, 2]
allocation = [[1, 0], [0, 1]]
need = [[2, 2], [3, 1]]
`,
			want: banker.Result{Safe: true, Order: []int{0, 1}},
		},
		{
			name: "unsafe",
			contents: `
available = [3, 2]
allocation = [[1, 0], [0, 1]]
need = [[4, 0], [0, 3]]
`,
			want: banker.Result{Safe: false, Order: []int{}, Blocked: []int{0, 1}},
		},
		{
			name: "explicit total",
			contents: `
available = [0]
allocation = [[1], [-1]]
need = [[0], [1]]
total = [0]
`,
			want: banker.Result{Safe: true, Order: []int{0, 1}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := loadMatrix(writeFile(t, "m.toml", tc.contents))
			if err != nil {
				t.Fatalf("loadMatrix: %v", err)
			}
			if diff := cmp.Diff(tc.want, m.Safe()); diff != "" {
				t.Errorf("Safe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMatrixErrors(t *testing.T) {
	for _, tc := range []struct {
		name, contents, want string
	}{
		{"unknown key", "available = [1]\nallocation = [[0]]\nneed = [[0]]\nmax = [[1]]\n", "unknown keys"},
		{"ragged rows", "available = [1, 1]\nallocation = [[0]]\nneed = [[0, 0]]\n", "row widths"},
		{"missing need", "available = [1]\nallocation = [[0]]\n", "need rows"},
		{"bad total", "available = [1]\nallocation = [[1]]\nneed = [[0]]\ntotal = [1]\n", "created with"},
		{"syntax", "available = [1\n", "reading matrix"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadMatrix(writeFile(t, "m.toml", tc.contents))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("loadMatrix() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestWriteResult(t *testing.T) {
	res := banker.Result{Safe: false, Order: []int{1}, Blocked: []int{0}}
	var buf bytes.Buffer
	if err := writeResult(&buf, "text", res); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "unsafe, blocked [0]\n"; got != want {
		t.Errorf("text output = %q, want %q", got, want)
	}

	buf.Reset()
	if err := writeResult(&buf, "json", res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"blocked": [`) || !strings.Contains(buf.String(), `"safe": false`) {
		t.Errorf("json output = %s", buf.String())
	}
}

func TestCompatibilityInfo(t *testing.T) {
	tables := tableMap(kernel.SyscallTables())
	info, err := getCompatibilityInfo(tables, rv64.OS, archAll)
	if err != nil {
		t.Fatalf("getCompatibilityInfo: %v", err)
	}
	doc, ok := info[rv64.OS][rv64.Arch].Syscalls[464]
	if !ok {
		t.Fatalf("syscall 464 missing from %v", info)
	}
	if doc.Name != "mutex_lock" || doc.Support != "Full Support" {
		t.Errorf("syscall 464 = %+v", doc)
	}
	for _, tc := range []struct{ os, arch string }{
		{"linux", archAll},
		{"linux", rv64.Arch},
		{rv64.OS, "amd64"},
	} {
		if _, err := getCompatibilityInfo(tables, tc.os, tc.arch); err == nil {
			t.Errorf("getCompatibilityInfo(%s, %s) succeeded", tc.os, tc.arch)
		}
	}
	if all, err := getCompatibilityInfo(tables, osAll, archAll); err != nil {
		t.Errorf("getCompatibilityInfo(all, all): %v", err)
	} else if _, ok := all[rv64.OS][rv64.Arch]; !ok {
		t.Errorf("getCompatibilityInfo(all, all) = %v, missing %s/%s", all, rv64.OS, rv64.Arch)
	}

	var buf bytes.Buffer
	if err := outputCSV(&buf, info); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "OS,Arch,Num,Name,Support,Note" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.Contains(buf.String(), "rcore,riscv64,464,mutex_lock,Full Support,\n") {
		t.Errorf("csv output missing mutex_lock:\n%s", buf.String())
	}

	buf.Reset()
	if err := outputTable(&buf, info); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "rcore/riscv64:") {
		t.Errorf("table output does not start with the OS/arch:\n%s", out)
	}
	// Syscalls are printed in number order.
	if strings.Index(out, "exit") > strings.Index(out, "condvar_wait") {
		t.Errorf("table output is not sorted:\n%s", out)
	}
}

func TestRunScenario(t *testing.T) {
	s, err := boot.Parse([]byte(`
name: cmd
deadlock_detect: true
mutexes: [blocking]
threads:
  - name: a
    ops:
      - {call: mutex_lock, args: [0], expect: ok}
      - {call: mutex_lock, args: [0], expect: deadlock}
      - {call: mutex_unlock, args: [0], expect: ok}
`))
	if err != nil {
		t.Fatal(err)
	}
	conf := &config.Config{Tick: time.Millisecond, Timeout: 10 * time.Second}
	r, err := runScenario(context.Background(), conf, "cmd-test", s)
	if err != nil {
		t.Fatalf("runScenario: %v", err)
	}
	if !r.OK() || r.RunID != "cmd-test" {
		t.Errorf("report = %+v", r)
	}

	var buf bytes.Buffer
	if err := writeMetricsTo(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`ksync_syscalls{outcome="deadlock"}`, `ksync_deadlock_rejections{class="mutex"}`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestRunScenarioTimeout(t *testing.T) {
	s, err := boot.Parse([]byte("name: stuck\nsemaphores: [0]\nthreads: [{name: a, ops: [{call: semaphore_down, args: [0]}]}]\n"))
	if err != nil {
		t.Fatal(err)
	}
	conf := &config.Config{Tick: time.Millisecond, Timeout: 20 * time.Millisecond}
	if _, err := runScenario(context.Background(), conf, "timeout", s); err == nil {
		t.Errorf("runScenario of a stuck scenario succeeded")
	}
}
