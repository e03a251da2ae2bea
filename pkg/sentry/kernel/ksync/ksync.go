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

// Package ksync implements the synchronization primitives that user threads
// create through syscalls: spin and blocking mutexes, counting semaphores and
// condition variables.
//
// Primitives know nothing about processes or resource accounting. They block
// and wake the calling task through the Sleeper and Waker interfaces, which
// kernel.Task implements.
package ksync

import (
	"ksync.dev/ksync/pkg/ilist"
)

// Waker wakes a suspended task.
type Waker interface {
	// Wake makes the task's pending or next Suspend return. It never
	// blocks, and a wake delivered before the task suspends is not lost.
	Wake()
}

// Sleeper is the calling task, as seen by a blocking primitive.
type Sleeper interface {
	Waker

	// Suspend blocks the calling task until it is woken.
	Suspend()

	// Yield gives up the processor without blocking.
	Yield()
}

// waiter is a task queued on a primitive.
//
// waiter is linked into exactly one waitQueue at a time.
type waiter struct {
	ilist.Entry[*waiter]

	w Waker
}

// waitQueue is a FIFO of waiters. Callers provide synchronization.
type waitQueue struct {
	list ilist.List[*waiter]
	n    int
}

// enqueue appends w to the queue.
func (q *waitQueue) enqueue(w Waker) {
	q.list.PushBack(&waiter{w: w})
	q.n++
}

// wakeOne removes the oldest waiter and wakes it. It returns false if the
// queue is empty.
func (q *waitQueue) wakeOne() bool {
	e, ok := q.list.PopFront()
	if !ok {
		return false
	}
	q.n--
	e.w.Wake()
	return true
}

// wakeAll wakes every waiter in FIFO order and returns how many there were.
func (q *waitQueue) wakeAll() int {
	n := 0
	for q.wakeOne() {
		n++
	}
	return n
}

// len returns the number of queued waiters.
func (q *waitQueue) len() int {
	return q.n
}
