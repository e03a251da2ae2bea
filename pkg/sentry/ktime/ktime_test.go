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

package ktime

import (
	"math"
	"testing"
	"time"
)

func TestTimeConversions(t *testing.T) {
	ts := FromMilliseconds(1500)
	if got := ts.Nanoseconds(); got != 1500*int64(time.Millisecond) {
		t.Errorf("Nanoseconds() = %d", got)
	}
	if got := ts.Add(250 * time.Millisecond).Milliseconds(); got != 1750 {
		t.Errorf("Add().Milliseconds() = %d, want 1750", got)
	}
	if got := FromNanoseconds(999_999).Milliseconds(); got != 0 {
		t.Errorf("Milliseconds() of a sub-millisecond time = %d, want 0", got)
	}
	if got := FromMilliseconds(3).Sub(FromMilliseconds(1)); got != 2*time.Millisecond {
		t.Errorf("Sub() = %v, want 2ms", got)
	}
}

func TestSyntheticClock(t *testing.T) {
	var c SyntheticClock
	if got := c.Now(); got != ZeroTime {
		t.Fatalf("new clock reads %v, want zero", got)
	}
	c.Add(10 * time.Millisecond)
	c.Store(FromMilliseconds(5))
	if got := c.Now().Milliseconds(); got != 10 {
		t.Errorf("clock went backwards: %d ms", got)
	}
	c.Store(FromMilliseconds(20))
	if got := c.Now().Milliseconds(); got != 20 {
		t.Errorf("Now() = %d ms, want 20", got)
	}
}

func TestAddSaturates(t *testing.T) {
	for _, tc := range []struct {
		t    Time
		d    time.Duration
		want Time
	}{
		{FromMilliseconds(1), time.Millisecond, FromMilliseconds(2)},
		{FromMilliseconds(1), math.MaxInt64, MaxTime},
		{MaxTime, time.Nanosecond, MaxTime},
		{FromMilliseconds(1), -2 * time.Millisecond, ZeroTime},
	} {
		if got := tc.t.Add(tc.d); got != tc.want {
			t.Errorf("%v.Add(%v) = %v, want %v", tc.t, tc.d, got, tc.want)
		}
	}
}

func TestMonotonicClock(t *testing.T) {
	c := NewMonotonicClock()
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Errorf("monotonic clock went backwards: %v then %v", a, b)
	}
}
