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

	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/sentry/kernel/banker"
)

// Process is a user process: an address space shared by a group of tasks,
// together with the synchronization resources those tasks created.
type Process struct {
	// k and pid are immutable.
	k   *Kernel
	pid int

	// mu guards res. Use WithResources.
	mu  processMutex
	res Resources
}

// PID returns the process id.
func (p *Process) PID() int {
	return p.pid
}

// Kernel returns the kernel that owns p.
func (p *Process) Kernel() *Kernel {
	return p.k
}

// WithResources calls fn with exclusive access to the resources of p and
// returns its error.
//
// fn must not block: no task may suspend while the process guard is held.
// r is only valid until fn returns.
func (p *Process) WithResources(fn func(r *Resources) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(&p.res)
}

// NewTask creates a new thread in p. It is given the lowest thread id that
// no live thread uses and whose previous owner left no resources behind.
func (p *Process) NewTask() *Task {
	t := &Task{
		k:    p.k,
		p:    p,
		wake: make(chan struct{}, 1),
	}
	p.mu.Lock()
	tid := p.res.addTask(t)
	p.mu.Unlock()

	t.tid = ThreadID(tid)
	t.logPrefix = fmt.Sprintf("[%d:%d] ", p.pid, tid)
	t.Debugf("Task created")
	return t
}

// Tasks returns the number of live tasks.
func (p *Process) Tasks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.res.tasks {
		if t != nil {
			n++
		}
	}
	return n
}

// Snapshot is a copy of the resource state of a process.
type Snapshot struct {
	PID            int           `json:"pid"`
	DeadlockDetect bool          `json:"deadlock_detect"`
	Mutexes        int           `json:"mutexes"`
	Semaphores     int           `json:"semaphores"`
	Condvars       int           `json:"condvars"`
	MutexMatrix    banker.Matrix `json:"mutex_matrix"`
	SemMatrix      banker.Matrix `json:"semaphore_matrix"`
}

// Snapshot returns a copy of the resource state of p.
func (p *Process) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		PID:            p.pid,
		DeadlockDetect: p.res.deadlockDetect,
		Mutexes:        len(p.res.mutexes),
		Semaphores:     len(p.res.semaphores),
		Condvars:       len(p.res.condvars),
		MutexMatrix:    p.res.mutexMatrix.Snapshot(),
		SemMatrix:      p.res.semMatrix.Snapshot(),
	}
}

// CheckInvariants verifies both resource matrices of p.
func (p *Process) CheckInvariants() error {
	return p.WithResources(func(r *Resources) error {
		return r.checkInvariants()
	})
}

// Release drops every resource of p and removes it from the kernel. Tasks
// of p must not be running.
func (p *Process) Release() {
	p.mu.Lock()
	p.res.init(p.res.deadlockDetect)
	p.mu.Unlock()
	p.k.removeProcess(p.pid)
	log.Infof("[%d] Process released", p.pid)
}
