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

package kernel

import (
	"testing"

	"ksync.dev/ksync/pkg/sentry/arch"
)

const (
	maxTestSyscall = 1000
)

func createSyscallTable() *SyscallTable {
	m := make(map[uintptr]Syscall)
	for i := uintptr(0); i <= maxTestSyscall; i++ {
		j := i
		m[i] = Syscall{
			Name: "test",
			Fn: func(*Task, arch.SyscallArguments) (uintptr, error) {
				return j, nil
			},
		}
	}

	s := &SyscallTable{
		OS:    "test",
		Arch:  "test",
		Table: m,
	}

	RegisterSyscallTable(s)
	return s
}

func TestTable(t *testing.T) {
	table := createSyscallTable()
	defer func() {
		// Cleanup registered tables to keep tests separate.
		allSyscallTables = []*SyscallTable{}
	}()

	// Go through all functions and check that they return the right value.
	for i := uintptr(0); i < maxTestSyscall; i++ {
		fn := table.Lookup(i)
		if fn == nil {
			t.Errorf("Syscall %v is set to nil", i)
			continue
		}

		v, _ := fn(nil, arch.SyscallArguments{})
		if v != i {
			t.Errorf("Wrong return value for syscall %v: expected %v, got %v", i, i, v)
		}
	}

	// Check that values outside the range return nil.
	for i := uintptr(maxTestSyscall + 1); i < maxTestSyscall+100; i++ {
		fn := table.Lookup(i)
		if fn != nil {
			t.Errorf("Syscall %v is not nil: %v", i, fn)
			continue
		}
	}

	if got, ok := LookupSyscallTable("test", "test"); !ok || got != table {
		t.Errorf("LookupSyscallTable did not find the registered table")
	}
	if _, ok := LookupSyscallTable("test", "other"); ok {
		t.Errorf("LookupSyscallTable found a table for an unknown arch")
	}
}

func TestLookupNames(t *testing.T) {
	s := &SyscallTable{
		Table: map[uintptr]Syscall{
			7: {Name: "seven"},
		},
	}
	if got, err := s.LookupNo("seven"); err != nil || got != 7 {
		t.Errorf("LookupNo(seven) = %d, %v; want 7, nil", got, err)
	}
	if _, err := s.LookupNo("eight"); err == nil {
		t.Errorf("LookupNo(eight) succeeded")
	}
	if got := s.LookupName(7); got != "seven" {
		t.Errorf("LookupName(7) = %q", got)
	}
	if got := s.LookupName(8); got != "sys_8" {
		t.Errorf("LookupName(8) = %q", got)
	}
}

func BenchmarkTableLookup(b *testing.B) {
	table := createSyscallTable()

	b.ResetTimer()

	j := uintptr(0)
	for i := 0; i < b.N; i++ {
		table.Lookup(j)
		j = (j + 1) % 310
	}

	b.StopTimer()
	// Cleanup registered tables to keep tests separate.
	allSyscallTables = []*SyscallTable{}
}
