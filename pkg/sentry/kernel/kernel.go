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

// Package kernel provides the processes, tasks and timers of the teaching
// kernel, and dispatches the syscalls of its user threads.
//
// Lock order:
//
//	Process.mu
//		ksync primitive internal locks
//		Timers.mu
//	Kernel.mu
//
// Process.mu is never held while a task is suspended.
package kernel

import (
	"context"
	"fmt"
	"time"

	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/sentry/ktime"
	"ksync.dev/ksync/pkg/sync"
)

// DefaultTick is the timer interrupt period used when InitKernelArgs.Tick is
// zero.
const DefaultTick = 10 * time.Millisecond

// InitKernelArgs holds arguments to Init.
type InitKernelArgs struct {
	// Clock is the kernel clock. If nil, a MonotonicClock starting at Init
	// is used.
	Clock ktime.Clock

	// Tick is the period of the timer interrupt started by Start.
	Tick time.Duration

	// SyscallTable dispatches the syscalls of every task. It must be set.
	SyscallTable *SyscallTable

	// DeadlockDetect is the initial deadlock detection setting of new
	// processes.
	DeadlockDetect bool
}

// Kernel represents an emulated teaching kernel.
type Kernel struct {
	// The following fields are immutable after Init.
	clock          ktime.Clock
	tick           time.Duration
	syscalls       *SyscallTable
	deadlockDetect bool
	timers         Timers

	mu sync.Mutex

	// nextPID is the next process id to hand out. Protected by mu.
	nextPID int

	// processes maps live process ids to processes. Protected by mu.
	processes map[int]*Process
}

// Init initializes a Kernel with no processes.
func (k *Kernel) Init(args InitKernelArgs) error {
	if args.SyscallTable == nil {
		return fmt.Errorf("args.SyscallTable is nil")
	}
	if args.Tick < 0 {
		return fmt.Errorf("negative tick %v", args.Tick)
	}
	k.clock = args.Clock
	if k.clock == nil {
		k.clock = ktime.NewMonotonicClock()
	}
	k.tick = args.Tick
	if k.tick == 0 {
		k.tick = DefaultTick
	}
	k.syscalls = args.SyscallTable
	k.syscalls.Init()
	k.deadlockDetect = args.DeadlockDetect
	k.timers.init()
	k.processes = make(map[int]*Process)
	return nil
}

// Clock returns the kernel clock.
func (k *Kernel) Clock() ktime.Clock {
	return k.clock
}

// Timers returns the kernel timer queue.
func (k *Kernel) Timers() *Timers {
	return &k.timers
}

// SyscallTable returns the table tasks dispatch syscalls through.
func (k *Kernel) SyscallTable() *SyscallTable {
	return k.syscalls
}

// Tick runs one timer interrupt: every task whose sleep deadline has passed
// is woken. It returns the number of tasks woken.
func (k *Kernel) Tick() int {
	return k.timers.FireExpired(k.clock.Now())
}

// Start runs the timer interrupt every tick until ctx is done. It returns
// immediately; the returned channel is closed when the interrupt stops.
func (k *Kernel) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(k.tick)
		defer ticker.Stop()
		log.Debugf("Timer interrupt started, tick %v", k.tick)
		for {
			select {
			case <-ctx.Done():
				log.Debugf("Timer interrupt stopped: %v", ctx.Err())
				return
			case <-ticker.C:
				k.Tick()
			}
		}
	}()
	return done
}

// NewProcess creates a process with one thread, its main task, whose thread
// id is 0.
func (k *Kernel) NewProcess() (*Process, *Task) {
	k.mu.Lock()
	pid := k.nextPID
	k.nextPID++
	p := &Process{k: k, pid: pid}
	p.res.init(k.deadlockDetect)
	k.processes[pid] = p
	k.mu.Unlock()

	t := p.NewTask()
	log.Infof("[%d] Process created, deadlock detection %t", pid, k.deadlockDetect)
	return p, t
}

// Process returns the live process with the given id.
func (k *Kernel) Process(pid int) (*Process, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.processes[pid]
	return p, ok
}

// Processes returns the number of live processes.
func (k *Kernel) Processes() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.processes)
}

func (k *Kernel) removeProcess(pid int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.processes, pid)
}
