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
	"ksync.dev/ksync/pkg/sentry/kernel/banker"
	"ksync.dev/ksync/pkg/sentry/kernel/ksync"
)

// Resources is the synchronization state of a process: slot tables of the
// primitives its threads created, the resource matrices used for deadlock
// avoidance, and the deadlock detection setting.
//
// Resources is protected by the process guard; it is only reachable through
// Process.WithResources.
type Resources struct {
	// mutexes, semaphores and condvars are slot tables indexed by resource
	// id. A nil entry is a free slot.
	mutexes    []ksync.Mutex
	semaphores []*ksync.Semaphore
	condvars   []*ksync.Condvar

	// mutexMatrix has one column per mutexes slot and semMatrix one per
	// semaphores slot. Both have one row per tasks slot.
	mutexMatrix banker.Matrix
	semMatrix   banker.Matrix

	// tasks is indexed by thread id. A nil entry is the id of an exited
	// thread.
	tasks []*Task

	deadlockDetect bool
}

func (r *Resources) init(deadlockDetect bool) {
	*r = Resources{deadlockDetect: deadlockDetect}
}

// freeSlot returns the lowest index of a nil entry of slots, or len(slots).
func freeSlot[T comparable](slots []T) int {
	var zero T
	for i, s := range slots {
		if s == zero {
			return i
		}
	}
	return len(slots)
}

// CreateMutex creates a mutex in the lowest free slot and returns its id.
func (r *Resources) CreateMutex(blocking bool) int {
	var m ksync.Mutex
	if blocking {
		m = &ksync.BlockingMutex{}
	} else {
		m = &ksync.SpinMutex{}
	}
	id := freeSlot(r.mutexes)
	if id == len(r.mutexes) {
		r.mutexes = append(r.mutexes, m)
		r.mutexMatrix.AddResource(1)
	} else {
		r.mutexes[id] = m
		r.mutexMatrix.ResetResource(id, 1)
	}
	return id
}

// CreateSemaphore creates a semaphore holding count units in the lowest free
// slot and returns its id.
//
// Precondition: count >= 0.
func (r *Resources) CreateSemaphore(count int) int {
	sem := ksync.NewSemaphore(count)
	id := freeSlot(r.semaphores)
	if id == len(r.semaphores) {
		r.semaphores = append(r.semaphores, sem)
		r.semMatrix.AddResource(count)
	} else {
		r.semaphores[id] = sem
		r.semMatrix.ResetResource(id, count)
	}
	return id
}

// CreateCondvar creates a condition variable in the lowest free slot and
// returns its id.
func (r *Resources) CreateCondvar() int {
	c := &ksync.Condvar{}
	id := freeSlot(r.condvars)
	if id == len(r.condvars) {
		r.condvars = append(r.condvars, c)
	} else {
		r.condvars[id] = c
	}
	return id
}

// lookup returns slots[id], or EINVAL if id is out of range or free.
func lookup[T comparable](slots []T, id int) (T, error) {
	var zero T
	if id < 0 || id >= len(slots) || slots[id] == zero {
		return zero, kerr.EINVAL
	}
	return slots[id], nil
}

// Mutex returns the mutex with the given id.
func (r *Resources) Mutex(id int) (ksync.Mutex, error) {
	return lookup(r.mutexes, id)
}

// Semaphore returns the semaphore with the given id.
func (r *Resources) Semaphore(id int) (*ksync.Semaphore, error) {
	return lookup(r.semaphores, id)
}

// Condvar returns the condition variable with the given id.
func (r *Resources) Condvar(id int) (*ksync.Condvar, error) {
	return lookup(r.condvars, id)
}

// MutexMatrix returns the resource matrix of the mutexes.
func (r *Resources) MutexMatrix() *banker.Matrix {
	return &r.mutexMatrix
}

// SemaphoreMatrix returns the resource matrix of the semaphores.
func (r *Resources) SemaphoreMatrix() *banker.Matrix {
	return &r.semMatrix
}

// DeadlockDetect returns true if lock and down requests are checked for
// safety before blocking.
func (r *Resources) DeadlockDetect() bool {
	return r.deadlockDetect
}

// SetDeadlockDetect enables or disables deadlock detection. Units already
// granted are not affected.
func (r *Resources) SetDeadlockDetect(enabled bool) {
	r.deadlockDetect = enabled
}

// addTask stores t under a new thread id and returns the id. Both matrices
// get a clean row for it.
func (r *Resources) addTask(t *Task) int {
	tid := len(r.tasks)
	for i, other := range r.tasks {
		if other == nil && r.rowIsClean(i) {
			tid = i
			break
		}
	}
	if tid == len(r.tasks) {
		r.tasks = append(r.tasks, t)
	} else {
		r.tasks[tid] = t
	}
	r.mutexMatrix.SetThread(tid)
	r.semMatrix.SetThread(tid)
	return tid
}

// rowIsClean returns true if thread tid holds and waits for nothing.
func (r *Resources) rowIsClean(tid int) bool {
	for _, m := range []*banker.Matrix{&r.mutexMatrix, &r.semMatrix} {
		for j := range m.Available {
			if m.Allocation[tid][j] != 0 || m.Need[tid][j] != 0 {
				return false
			}
		}
	}
	return true
}

// removeTask frees the thread id of t. Its matrix rows are kept, so units
// it still holds stay accounted to it, but they are marked exited: the
// safety check no longer expects those units back.
func (r *Resources) removeTask(t *Task) {
	tid := int(t.tid)
	if tid >= len(r.tasks) || r.tasks[tid] != t {
		panic(fmt.Sprintf("task %d is not in its process", tid))
	}
	r.tasks[tid] = nil
	r.mutexMatrix.Exit(tid)
	r.semMatrix.Exit(tid)
}

func (r *Resources) checkInvariants() error {
	if got, want := r.mutexMatrix.Resources(), len(r.mutexes); got != want {
		return fmt.Errorf("mutex matrix has %d columns for %d mutexes", got, want)
	}
	if got, want := r.semMatrix.Resources(), len(r.semaphores); got != want {
		return fmt.Errorf("semaphore matrix has %d columns for %d semaphores", got, want)
	}
	for _, m := range []*banker.Matrix{&r.mutexMatrix, &r.semMatrix} {
		if got, want := m.Threads(), len(r.tasks); got != want {
			return fmt.Errorf("matrix has %d rows for %d threads", got, want)
		}
	}
	if err := r.mutexMatrix.CheckInvariants(); err != nil {
		return fmt.Errorf("mutex matrix: %w", err)
	}
	if err := r.semMatrix.CheckInvariants(); err != nil {
		return fmt.Errorf("semaphore matrix: %w", err)
	}
	return nil
}
