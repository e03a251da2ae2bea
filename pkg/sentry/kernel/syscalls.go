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
	"fmt"

	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sync"
)

// SyscallSupportLevel is a syscall support levels.
type SyscallSupportLevel int

// String returns a human readable representation of the support level.
func (l SyscallSupportLevel) String() string {
	switch l {
	case SupportUnimplemented:
		return "Unimplemented"
	case SupportPartial:
		return "Partial Support"
	case SupportFull:
		return "Full Support"
	default:
		return "Undocumented"
	}
}

const (
	// SupportUndocumented indicates the syscall is not documented yet.
	SupportUndocumented SyscallSupportLevel = iota

	// SupportUnimplemented indicates the syscall is unimplemented.
	SupportUnimplemented

	// SupportPartial indicates the syscall is partially supported.
	SupportPartial

	// SupportFull indicates the syscall is fully supported.
	SupportFull
)

// SyscallFn is a syscall implementation. The returned value is placed in
// the return register unless err is non-nil, in which case the return code
// of err is.
type SyscallFn func(t *Task, args arch.SyscallArguments) (uintptr, error)

// MissingFn is a syscall to be called when an implementation is missing.
type MissingFn func(t *Task, sysno uintptr, args arch.SyscallArguments) (uintptr, error)

// Syscall includes the syscall implementation and compatibility information.
type Syscall struct {
	// Name is the syscall name.
	Name string
	// Fn is the implementation of the syscall.
	Fn SyscallFn
	// SupportLevel is the level of support implemented.
	SupportLevel SyscallSupportLevel
	// Note describes the compatibility of the syscall.
	Note string
}

// SyscallTable is a lookup table of system calls.
//
// Note that a SyscallTable is not *necessarily* unique to an ABI; only the
// calls it defines matter.
type SyscallTable struct {
	// OS is the operating system that this syscall table implements.
	OS string

	// Arch is the architecture that this syscall table targets.
	Arch string

	// Table is the collection of functions.
	Table map[uintptr]Syscall

	// Missing is the function to call when a syscall is not defined in
	// Table. If nil, Init sets it to return ENOSYS.
	Missing MissingFn

	initOnce sync.Once
	names    map[string]uintptr
}

// allSyscallTables contains all known tables.
var (
	tablesMu         sync.Mutex
	allSyscallTables []*SyscallTable
)

// SyscallTables returns a read-only slice of registered SyscallTables.
func SyscallTables() []*SyscallTable {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	return append([]*SyscallTable(nil), allSyscallTables...)
}

// LookupSyscallTable returns the SyscallCall table for the OS/Arch combination.
func LookupSyscallTable(os, arch string) (*SyscallTable, bool) {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	for _, s := range allSyscallTables {
		if s.OS == os && s.Arch == arch {
			return s, true
		}
	}
	return nil, false
}

// RegisterSyscallTable registers a new syscall table for use by a Kernel.
func RegisterSyscallTable(s *SyscallTable) {
	s.Init()
	tablesMu.Lock()
	defer tablesMu.Unlock()
	allSyscallTables = append(allSyscallTables, s)
}

// Init initializes the name index and the Missing function. It is safe to
// call more than once.
func (s *SyscallTable) Init() {
	s.initOnce.Do(func() {
		if s.Missing == nil {
			s.Missing = func(*Task, uintptr, arch.SyscallArguments) (uintptr, error) {
				return 0, kerr.ENOSYS
			}
		}
		s.names = make(map[string]uintptr, len(s.Table))
		for num, sc := range s.Table {
			s.names[sc.Name] = num
		}
	})
}

// Lookup returns the syscall implementation, if one exists.
func (s *SyscallTable) Lookup(sysno uintptr) SyscallFn {
	if sc, ok := s.Table[sysno]; ok {
		return sc.Fn
	}
	return nil
}

// LookupName looks up a syscall name.
func (s *SyscallTable) LookupName(sysno uintptr) string {
	if sc, ok := s.Table[sysno]; ok {
		return sc.Name
	}
	return fmt.Sprintf("sys_%d", sysno)
}

// LookupNo looks up a syscall number by name.
func (s *SyscallTable) LookupNo(name string) (uintptr, error) {
	s.Init()
	if num, ok := s.names[name]; ok {
		return num, nil
	}
	return 0, fmt.Errorf("syscall %q not found", name)
}
