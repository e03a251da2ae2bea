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

package ksync

import (
	"fmt"

	"ksync.dev/ksync/pkg/sync"
)

// Semaphore is a counting semaphore.
//
// A negative count is the number of tasks queued in Down. Up hands its unit
// directly to the oldest of them.
type Semaphore struct {
	mu    sync.Mutex
	count int
	queue waitQueue
}

// NewSemaphore returns a semaphore with count units.
func NewSemaphore(count int) *Semaphore {
	if count < 0 {
		panic(fmt.Sprintf("negative semaphore count %d", count))
	}
	return &Semaphore{count: count}
}

// Down takes one unit, blocking s until one is available.
func (sem *Semaphore) Down(s Sleeper) {
	sem.mu.Lock()
	sem.count--
	if sem.count >= 0 {
		sem.mu.Unlock()
		return
	}
	sem.queue.enqueue(s)
	sem.mu.Unlock()
	s.Suspend()
}

// Up returns one unit, waking a queued task if there is one.
func (sem *Semaphore) Up() {
	sem.mu.Lock()
	defer sem.mu.Unlock()
	sem.count++
	if sem.count <= 0 {
		sem.queue.wakeOne()
	}
}

// Count returns the current count.
func (sem *Semaphore) Count() int {
	sem.mu.Lock()
	defer sem.mu.Unlock()
	return sem.count
}

// Waiters returns the number of tasks queued in Down.
func (sem *Semaphore) Waiters() int {
	sem.mu.Lock()
	defer sem.mu.Unlock()
	return sem.queue.len()
}
