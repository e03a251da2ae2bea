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

// Package rcore contains the constants of the teaching kernel's user ABI:
// syscall numbers, argument values and special return codes.
package rcore

// Syscall numbers. They match the RISC-V teaching kernel the user programs
// are built against.
const (
	SYS_EXIT                   = 93
	SYS_SLEEP                  = 101
	SYS_YIELD                  = 124
	SYS_GET_TIME               = 169
	SYS_GETTID                 = 178
	SYS_SBRK                   = 214
	SYS_MUNMAP                 = 215
	SYS_MMAP                   = 222
	SYS_TASK_INFO              = 410
	SYS_MUTEX_CREATE           = 463
	SYS_MUTEX_LOCK             = 464
	SYS_MUTEX_UNLOCK           = 466
	SYS_SEMAPHORE_CREATE       = 467
	SYS_SEMAPHORE_UP           = 468
	SYS_ENABLE_DEADLOCK_DETECT = 469
	SYS_SEMAPHORE_DOWN         = 470
	SYS_CONDVAR_CREATE         = 471
	SYS_CONDVAR_SIGNAL         = 472
	SYS_CONDVAR_WAIT           = 473
)

// Return codes.
const (
	// RetError is returned by every syscall that rejects its arguments.
	RetError = -1

	// RetDeadlock is returned by mutex_lock and semaphore_down when granting
	// the request could leave the process in an unsafe state.
	RetDeadlock = -0xDEAD
)

// Values of the mutex_create argument.
const (
	MutexSpin     = 0
	MutexBlocking = 1
)

// Values of the enable_deadlock_detect argument.
const (
	DeadlockDetectOff = 0
	DeadlockDetectOn  = 1
)
