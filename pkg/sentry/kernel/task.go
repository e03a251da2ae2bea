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
	"runtime"
	"sync/atomic"

	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/metric"
	"ksync.dev/ksync/pkg/sentry/arch"
)

var (
	suspendCount = metric.MustCreateNewUint64Metric("/ksync/task/suspends",
		"Number of times a task suspended waiting for a wakeup.")
	syscallCount = metric.MustCreateNewUint64Metric("/ksync/syscalls",
		"Number of syscalls completed, by outcome.",
		metric.NewField("outcome", []string{"ok", "error", "deadlock", "unimplemented"}))
)

// ThreadID is a thread identifier, unique within a process.
type ThreadID int32

// TaskState is the scheduling state of a task.
type TaskState int32

// Task states.
const (
	// TaskRunning is the state of a task that is executing or runnable.
	TaskRunning TaskState = iota

	// TaskBlocked is the state of a suspended task.
	TaskBlocked

	// TaskExited is the state of a task that called Exit.
	TaskExited
)

// String implements fmt.Stringer.
func (s TaskState) String() string {
	switch s {
	case TaskRunning:
		return "running"
	case TaskBlocked:
		return "blocked"
	case TaskExited:
		return "exited"
	default:
		return fmt.Sprintf("TaskState(%d)", int32(s))
	}
}

// Task represents a thread of execution in a process.
//
// Each task runs on the goroutine that calls its Syscall method; a task is
// never used by two goroutines at once, except for Wake and State.
type Task struct {
	// The following fields are immutable after NewTask.
	k         *Kernel
	p         *Process
	tid       ThreadID
	logPrefix string

	// wake carries at most one pending wakeup.
	wake chan struct{}

	state      atomic.Int32
	yieldCount atomic.Uint64
}

// Kernel returns the kernel that t belongs to.
func (t *Task) Kernel() *Kernel {
	return t.k
}

// Process returns the process that t belongs to.
func (t *Task) Process() *Process {
	return t.p
}

// ThreadID returns t's thread id.
func (t *Task) ThreadID() ThreadID {
	return t.tid
}

// State returns t's scheduling state.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

// Suspend implements ksync.Sleeper.Suspend.
func (t *Task) Suspend() {
	suspendCount.Increment()
	t.state.Store(int32(TaskBlocked))
	<-t.wake
	t.state.Store(int32(TaskRunning))
}

// Wake implements ksync.Waker.Wake.
func (t *Task) Wake() {
	select {
	case t.wake <- struct{}{}:
	default:
		// A wakeup is already pending.
	}
}

// Yield implements ksync.Sleeper.Yield.
func (t *Task) Yield() {
	t.yieldCount.Add(1)
	runtime.Gosched()
}

// YieldCount returns the number of times t yielded.
func (t *Task) YieldCount() uint64 {
	return t.yieldCount.Load()
}

// Exit ends t. Its thread id may be reused by a later NewTask once it no
// longer holds any resource.
func (t *Task) Exit() {
	t.p.mu.Lock()
	t.p.res.removeTask(t)
	t.p.mu.Unlock()
	t.state.Store(int32(TaskExited))
	t.Debugf("Task exited")
}

// Debugf creates a debug log that includes the task ID.
func (t *Task) Debugf(fmt string, v ...any) {
	if log.IsLogging(log.Debug) {
		log.Log().DebugfAtDepth(1, t.logPrefix+fmt, v...)
	}
}

// Infof logs an formatted info message by calling log.Infof.
func (t *Task) Infof(fmt string, v ...any) {
	if log.IsLogging(log.Info) {
		log.Log().InfofAtDepth(1, t.logPrefix+fmt, v...)
	}
}

// Warningf logs a warning string by calling log.Warningf.
func (t *Task) Warningf(fmt string, v ...any) {
	if log.IsLogging(log.Warning) {
		log.Log().WarningfAtDepth(1, t.logPrefix+fmt, v...)
	}
}

// LogPrefix returns the "[pid:tid] " prefix of t's log lines.
func (t *Task) LogPrefix() string {
	return t.logPrefix
}

// Syscall executes syscall sysno with the given register arguments on
// behalf of t and returns the value placed in the return register.
func (t *Task) Syscall(sysno uintptr, args ...int64) int64 {
	return t.executeSyscall(sysno, arch.Arguments(args...))
}

func (t *Task) executeSyscall(sysno uintptr, args arch.SyscallArguments) int64 {
	s := t.k.syscalls
	fn := s.Lookup(sysno)
	if fn == nil {
		syscallCount.Increment("unimplemented")
		t.Debugf("Unimplemented syscall %d", sysno)
		_, err := s.Missing(t, sysno, args)
		return kerr.ToReturn(0, err)
	}

	if log.IsLogging(log.Debug) {
		t.Debugf("%s(%d, %d) E", s.LookupName(sysno), args[0].Int64(), args[1].Int64())
	}
	val, err := fn(t, args)
	ret := kerr.ToReturn(val, err)
	switch {
	case err == nil:
		syscallCount.Increment("ok")
	case kerr.Equals(kerr.EDEADLOCK, err):
		syscallCount.Increment("deadlock")
	default:
		syscallCount.Increment("error")
	}
	if log.IsLogging(log.Debug) {
		if err != nil {
			t.Debugf("%s = %d (%v)", s.LookupName(sysno), ret, err)
		} else {
			t.Debugf("%s = %d", s.LookupName(sysno), ret)
		}
	}
	return ret
}
