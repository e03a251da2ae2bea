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
	"sync/atomic"

	"ksync.dev/ksync/pkg/sync"
)

// Mutex is a mutual exclusion lock owned by a user thread.
type Mutex interface {
	// Lock acquires the mutex, blocking s until it is available.
	Lock(s Sleeper)

	// Unlock releases the mutex. It panics if the mutex is not locked.
	Unlock()

	// Blocking returns true if waiters suspend instead of spinning.
	Blocking() bool
}

// SpinMutex is a Mutex whose waiters retry in a loop and yield between
// attempts. It never queues.
type SpinMutex struct {
	locked atomic.Bool
}

// Lock implements Mutex.Lock.
func (m *SpinMutex) Lock(s Sleeper) {
	for !m.locked.CompareAndSwap(false, true) {
		s.Yield()
	}
}

// Unlock implements Mutex.Unlock.
func (m *SpinMutex) Unlock() {
	if !m.locked.Swap(false) {
		panic("unlock of unlocked SpinMutex")
	}
}

// Blocking implements Mutex.Blocking.
func (*SpinMutex) Blocking() bool { return false }

// Locked returns true if the mutex is held.
func (m *SpinMutex) Locked() bool {
	return m.locked.Load()
}

// BlockingMutex is a Mutex whose waiters suspend on a FIFO queue.
//
// Unlock wakes the oldest waiter, which then competes for the mutex again: a
// task that calls Lock before the woken waiter runs may take the mutex, and
// the waiter goes back to the end of the queue.
type BlockingMutex struct {
	mu     sync.Mutex
	locked bool
	queue  waitQueue
}

// Lock implements Mutex.Lock.
func (m *BlockingMutex) Lock(s Sleeper) {
	for {
		m.mu.Lock()
		if !m.locked {
			m.locked = true
			m.mu.Unlock()
			return
		}
		m.queue.enqueue(s)
		m.mu.Unlock()
		s.Suspend()
	}
}

// Unlock implements Mutex.Unlock.
func (m *BlockingMutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.locked {
		panic("unlock of unlocked BlockingMutex")
	}
	m.locked = false
	m.queue.wakeOne()
}

// Blocking implements Mutex.Blocking.
func (*BlockingMutex) Blocking() bool { return true }

// Locked returns true if the mutex is held.
func (m *BlockingMutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// Waiters returns the number of tasks queued on the mutex.
func (m *BlockingMutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.len()
}
