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

// Package boot loads scenarios into a kernel and runs them.
package boot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/cleanup"
	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/ktime"
	"ksync.dev/ksync/pkg/sentry/syscalls/rv64"
)

// Args are the arguments for New().
type Args struct {
	// Scenario is the program to run. It must be set.
	Scenario *Scenario

	// RunID identifies the run in logs and the report.
	RunID string

	// Clock is the kernel clock. If nil, the kernel uses a monotonic clock.
	Clock ktime.Clock

	// Tick is the period of the timer interrupt. If zero, the kernel default
	// is used.
	Tick time.Duration

	// DeadlockDetect is the deadlock detection setting the process starts
	// with, unless the scenario sets one.
	DeadlockDetect bool
}

// Loader keeps state needed to run a scenario.
type Loader struct {
	k        *kernel.Kernel
	scenario *Scenario
	runID    string

	// sysno holds the resolved syscall number of every op, indexed like
	// scenario.Threads[i].Ops[j].
	sysno [][]uintptr
}

// New initializes a new kernel loaded with the rv64 syscall table and
// resolves the syscalls of args.Scenario.
func New(args Args) (*Loader, error) {
	if args.Scenario == nil {
		return nil, fmt.Errorf("args.Scenario is nil")
	}
	k := &kernel.Kernel{}
	if err := k.Init(kernel.InitKernelArgs{
		Clock:          args.Clock,
		Tick:           args.Tick,
		SyscallTable:   rv64.RV64,
		DeadlockDetect: args.DeadlockDetect,
	}); err != nil {
		return nil, fmt.Errorf("initializing kernel: %w", err)
	}

	l := &Loader{
		k:        k,
		scenario: args.Scenario,
		runID:    args.RunID,
		sysno:    make([][]uintptr, len(args.Scenario.Threads)),
	}
	for i, th := range args.Scenario.Threads {
		l.sysno[i] = make([]uintptr, len(th.Ops))
		for j, op := range th.Ops {
			no, err := k.SyscallTable().LookupNo(op.Call)
			if err != nil {
				return nil, fmt.Errorf("thread %q op %d: %w", th.Name, j, err)
			}
			l.sysno[i][j] = no
		}
	}
	return l, nil
}

// Kernel returns the loader's kernel.
func (l *Loader) Kernel() *kernel.Kernel {
	return l.k
}

// Run creates a process, creates the scenario's resources from its main
// thread and runs one task per scenario thread until all of them finish or
// ctx is done.
//
// When ctx is done first, the error names the threads that were still
// blocked. Their goroutines stay parked: a suspended task cannot be
// interrupted. The process is not released in that case, so a task woken
// later still finds its resources.
func (l *Loader) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	timer := l.k.Start(ctx)
	defer func() {
		cancel()
		<-timer
	}()

	p, main := l.k.NewProcess()
	cu := cleanup.Make(p.Release)
	defer cu.Clean()
	log.Infof("Run %s: scenario %q, process %d, %d threads", l.runID, l.scenario.Name, p.PID(), len(l.scenario.Threads))
	if err := l.createResources(main); err != nil {
		return nil, err
	}

	tasks := make([]*kernel.Task, len(l.scenario.Threads))
	for i := range tasks {
		tasks[i] = p.NewTask()
	}
	threads := make([]ThreadReport, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i := range tasks {
		g.Go(func() error {
			return l.runThread(gctx, i, tasks[i], &threads[i])
		})
	}
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		// Tasks may still wake and finish their syscall, so the process
		// and its matrices are left in place for them.
		cu.Release()
		log.Warningf("Run %s: timed out, process %d left with its tasks", l.runID, p.PID())
		var blocked []string
		for i, t := range tasks {
			if t.State() == kernel.TaskBlocked {
				blocked = append(blocked, l.scenario.Threads[i].Name)
			}
		}
		return nil, fmt.Errorf("scenario %q did not finish: %w (blocked threads: %v)", l.scenario.Name, ctx.Err(), blocked)
	}

	r := &Report{
		RunID:    l.runID,
		Scenario: l.scenario.Name,
		Threads:  threads,
		Process:  p.Snapshot(),
	}
	for _, th := range threads {
		r.Failures += th.Failures
	}
	if err := p.CheckInvariants(); err != nil {
		r.Invariants = err.Error()
	}
	log.Infof("Run %s: finished with %d failures", l.runID, r.Failures)
	return r, nil
}

// createResources makes the scenario's mutexes, semaphores and condvars
// from the main thread.
func (l *Loader) createResources(main *kernel.Task) error {
	s := l.scenario
	create := func(what string, want int, sysno uintptr, arg int64) error {
		if got := main.Syscall(sysno, arg); got != int64(want) {
			return fmt.Errorf("creating %s %d: got id %d", what, want, got)
		}
		return nil
	}
	for i, kind := range s.Mutexes {
		arg := int64(rcore.MutexSpin)
		if kind == "blocking" {
			arg = rcore.MutexBlocking
		}
		if err := create("mutex", i, rcore.SYS_MUTEX_CREATE, arg); err != nil {
			return err
		}
	}
	for i, count := range s.Semaphores {
		if err := create("semaphore", i, rcore.SYS_SEMAPHORE_CREATE, count); err != nil {
			return err
		}
	}
	for i := 0; i < s.Condvars; i++ {
		if err := create("condvar", i, rcore.SYS_CONDVAR_CREATE, 0); err != nil {
			return err
		}
	}
	if s.DeadlockDetect != nil {
		flag := int64(rcore.DeadlockDetectOff)
		if *s.DeadlockDetect {
			flag = rcore.DeadlockDetectOn
		}
		if ret := main.Syscall(rcore.SYS_ENABLE_DEADLOCK_DETECT, flag); ret != 0 {
			return fmt.Errorf("enable_deadlock_detect(%d) = %d", flag, ret)
		}
	}
	return nil
}

func (l *Loader) runThread(ctx context.Context, i int, t *kernel.Task, r *ThreadReport) error {
	th := l.scenario.Threads[i]
	r.Name = th.Name
	r.TID = int(t.ThreadID())
	repeat := th.Repeat
	if repeat == 0 {
		repeat = 1
	}
	for n := 0; n < repeat; n++ {
		for j, op := range th.Ops {
			if err := ctx.Err(); err != nil {
				return err
			}
			ret := t.Syscall(l.sysno[i][j], op.Args...)
			res := OpResult{Call: op.Call, Args: op.Args, Ret: ret}
			if op.Expect != nil {
				want := int64(*op.Expect)
				res.Expect = &want
				if ret != want {
					r.Failures++
					t.Warningf("%s%v = %d, want %d", op.Call, op.Args, ret, want)
				}
			}
			r.Ops = append(r.Ops, res)
		}
	}
	t.Exit()
	return nil
}
