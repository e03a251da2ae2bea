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

// Package rv64 provides a syscall table for the RISC-V teaching kernel ABI.
package rv64

import (
	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/syscalls"
)

const (
	// OS is the name of the emulated operating system.
	OS = "rcore"

	// Arch is the name of the emulated architecture.
	Arch = "riscv64"
)

// RV64 is a table of teaching kernel syscalls for RISC-V 64.
var RV64 = &kernel.SyscallTable{
	OS:   OS,
	Arch: Arch,
	Table: map[uintptr]kernel.Syscall{
		rcore.SYS_EXIT:      syscalls.Error("exit", kerr.ENOSYS, "Threads exit when their scenario ends."),
		rcore.SYS_SLEEP:     syscalls.Supported("sleep", Sleep),
		rcore.SYS_YIELD:     syscalls.Supported("yield", Yield),
		rcore.SYS_GET_TIME:  syscalls.PartiallySupported("get_time", GetTime, "Returns milliseconds since boot instead of filling a TimeVal."),
		rcore.SYS_GETTID:    syscalls.Supported("gettid", Gettid),
		rcore.SYS_SBRK:      syscalls.Error("sbrk", kerr.ENOSYS, "No address space management."),
		rcore.SYS_MUNMAP:    syscalls.Error("munmap", kerr.ENOSYS, "No address space management."),
		rcore.SYS_MMAP:      syscalls.Error("mmap", kerr.ENOSYS, "No address space management."),
		rcore.SYS_TASK_INFO: syscalls.Error("task_info", kerr.ENOSYS, "No task accounting."),

		rcore.SYS_MUTEX_CREATE:           syscalls.Supported("mutex_create", MutexCreate),
		rcore.SYS_MUTEX_LOCK:             syscalls.Supported("mutex_lock", MutexLock),
		rcore.SYS_MUTEX_UNLOCK:           syscalls.Supported("mutex_unlock", MutexUnlock),
		rcore.SYS_SEMAPHORE_CREATE:       syscalls.Supported("semaphore_create", SemaphoreCreate),
		rcore.SYS_SEMAPHORE_UP:           syscalls.Supported("semaphore_up", SemaphoreUp),
		rcore.SYS_ENABLE_DEADLOCK_DETECT: syscalls.Supported("enable_deadlock_detect", EnableDeadlockDetect),
		rcore.SYS_SEMAPHORE_DOWN:         syscalls.Supported("semaphore_down", SemaphoreDown),
		rcore.SYS_CONDVAR_CREATE:         syscalls.Supported("condvar_create", CondvarCreate),
		rcore.SYS_CONDVAR_SIGNAL:         syscalls.Supported("condvar_signal", CondvarSignal),
		rcore.SYS_CONDVAR_WAIT:           syscalls.Supported("condvar_wait", CondvarWait),
	},
}

func init() {
	kernel.RegisterSyscallTable(RV64)
}
