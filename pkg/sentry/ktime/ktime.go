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

// Package ktime provides the clocks used by the kernel.
package ktime

import (
	"fmt"
	"math"
	"time"

	"ksync.dev/ksync/pkg/sync"
)

// Time represents an instant on a kernel clock, in nanoseconds since the
// clock's zero time (kernel boot).
type Time struct {
	ns int64
}

var (
	// ZeroTime is the zero value of Time.
	ZeroTime = Time{}

	// MaxTime is the latest representable Time.
	MaxTime = Time{math.MaxInt64}
)

// FromNanoseconds returns a Time representing the point ns nanoseconds after
// the clock's zero time.
func FromNanoseconds(ns int64) Time {
	return Time{ns}
}

// FromMilliseconds returns a Time representing the point ms milliseconds
// after the clock's zero time.
func FromMilliseconds(ms int64) Time {
	return Time{ms * int64(time.Millisecond)}
}

// Nanoseconds returns nanoseconds elapsed since the zero time.
func (t Time) Nanoseconds() int64 {
	return t.ns
}

// Milliseconds returns milliseconds elapsed since the zero time.
func (t Time) Milliseconds() int64 {
	return t.ns / int64(time.Millisecond)
}

// Add adds the duration of d to t. The result saturates at MaxTime and
// ZeroTime.
func (t Time) Add(d time.Duration) Time {
	switch {
	case d > 0 && t.ns > math.MaxInt64-int64(d):
		return MaxTime
	case d < 0 && t.ns+int64(d) < 0:
		return ZeroTime
	}
	return Time{t.ns + int64(d)}
}

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t.ns - u.ns)
}

// Before reports whether the instant t is before the instant u.
func (t Time) Before(u Time) bool {
	return t.ns < u.ns
}

// After reports whether the instant t is after the instant u.
func (t Time) After(u Time) bool {
	return t.ns > u.ns
}

// String returns the time as milliseconds since boot.
func (t Time) String() string {
	return fmt.Sprintf("%d.%06dms", t.ns/int64(time.Millisecond), t.ns%int64(time.Millisecond))
}

// Clock is a kernel time source.
type Clock interface {
	// Now returns the current time.
	Now() Time
}

// MonotonicClock measures time elapsed since it was created, using the host
// monotonic clock.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a MonotonicClock whose zero time is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now implements Clock.Now.
func (c *MonotonicClock) Now() Time {
	return Time{int64(time.Since(c.start))}
}

// SyntheticClock is a Clock whose current time is set manually by calling
// Store or Add. Tests use it to drive sleep deadlines deterministically.
type SyntheticClock struct {
	mu  sync.Mutex
	now Time
}

// Now implements Clock.Now.
func (c *SyntheticClock) Now() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Store sets the clock to t. The clock never goes backwards; an earlier t
// is ignored.
func (c *SyntheticClock) Store(t Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

// Add advances the clock by d and returns the new time.
func (c *SyntheticClock) Add(d time.Duration) Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}
