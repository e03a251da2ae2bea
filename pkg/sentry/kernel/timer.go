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
	"github.com/google/btree"

	"ksync.dev/ksync/pkg/sentry/kernel/ksync"
	"ksync.dev/ksync/pkg/sentry/ktime"
	"ksync.dev/ksync/pkg/sync"
)

// timerEntry is a task waiting for a deadline.
type timerEntry struct {
	deadline ktime.Time

	// seq orders entries with equal deadlines by registration.
	seq uint64

	w ksync.Waker
}

func timerLess(a, b timerEntry) bool {
	if a.deadline != b.deadline {
		return a.deadline.Before(b.deadline)
	}
	return a.seq < b.seq
}

// Timers is the kernel timer queue, ordered by deadline.
type Timers struct {
	mu      sync.Mutex
	seq     uint64
	entries *btree.BTreeG[timerEntry]
}

func (t *Timers) init() {
	t.entries = btree.NewG(8, timerLess)
}

// WakeAt arranges for w to be woken by the first timer interrupt at or
// after deadline.
func (t *Timers) WakeAt(deadline ktime.Time, w ksync.Waker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.entries.ReplaceOrInsert(timerEntry{deadline: deadline, seq: t.seq, w: w})
}

// FireExpired wakes, in deadline order, every waker whose deadline is not
// after now, and returns how many it woke.
func (t *Timers) FireExpired(now ktime.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for {
		e, ok := t.entries.Min()
		if !ok || e.deadline.After(now) {
			return n
		}
		t.entries.DeleteMin()
		e.w.Wake()
		n++
	}
}

// Len returns the number of pending timers.
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Len()
}

// Next returns the earliest pending deadline.
func (t *Timers) Next() (ktime.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries.Min()
	return e.deadline, ok
}
