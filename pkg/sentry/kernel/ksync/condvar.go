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
	"ksync.dev/ksync/pkg/sync"
)

// Condvar is a condition variable used together with a Mutex.
//
// A woken waiter only learns that a signal happened: another task may take
// the mutex, and change the condition, before the waiter gets it back.
// Callers re-check their condition in a loop.
type Condvar struct {
	mu    sync.Mutex
	queue waitQueue
}

// Wait atomically releases m and suspends s until Signal or Broadcast wakes
// it, then re-acquires m before returning. s must hold m.
//
// s is queued before m is released, so a signal sent by a task that takes m
// right after the release is never missed.
func (c *Condvar) Wait(s Sleeper, m Mutex) {
	c.mu.Lock()
	c.queue.enqueue(s)
	c.mu.Unlock()

	m.Unlock()
	s.Suspend()
	m.Lock(s)
}

// Signal wakes the oldest waiter. It does nothing if there is none.
func (c *Condvar) Signal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.wakeOne()
}

// Broadcast wakes every waiter and returns how many there were.
func (c *Condvar) Broadcast() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.wakeAll()
}

// Waiters returns the number of tasks waiting.
func (c *Condvar) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}
