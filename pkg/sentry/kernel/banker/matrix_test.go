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

package banker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newMatrix(t *testing.T, threads int, units ...int) *Matrix {
	t.Helper()
	var m Matrix
	for _, u := range units {
		m.AddResource(u)
	}
	for tid := range threads {
		m.SetThread(tid)
	}
	return &m
}

func mustHoldInvariants(t *testing.T, m *Matrix) {
	t.Helper()
	if err := m.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v\n%+v", err, m.Snapshot())
	}
}

func TestGrowth(t *testing.T) {
	var m Matrix
	m.SetThread(0)
	if got := m.AddResource(2); got != 0 {
		t.Errorf("AddResource() = %d, want 0", got)
	}
	m.SetThread(2)
	if got := m.AddResource(1); got != 1 {
		t.Errorf("AddResource() = %d, want 1", got)
	}
	want := Matrix{
		Available:  []int{2, 1},
		Allocation: [][]int{{0, 0}, {0, 0}, {0, 0}},
		Need:       [][]int{{0, 0}, {0, 0}, {0, 0}},
		Total:      []int{2, 1},
		Exited:     []bool{false, false, false},
	}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	mustHoldInvariants(t, &m)
}

func TestConservation(t *testing.T) {
	m := newMatrix(t, 3, 1, 3)
	steps := []func(){
		func() { m.Request(0, 0) },
		func() { m.Grant(0, 0) },
		func() { m.Request(1, 1) },
		func() { m.Grant(1, 1) },
		func() { m.Request(2, 1) },
		func() { m.Grant(2, 1) },
		func() { m.Release(0, 0) },
		func() { m.Request(1, 0) },
		func() { m.Grant(1, 0) },
		func() { m.Release(2, 1) },
		func() { m.Release(1, 0) },
		func() { m.Release(1, 1) },
	}
	for i, step := range steps {
		step()
		if err := m.CheckInvariants(); err != nil {
			t.Fatalf("after step %d: %v", i, err)
		}
	}
	if diff := cmp.Diff([]int{1, 3}, m.Available); diff != "" {
		t.Errorf("available mismatch (-want +got):\n%s", diff)
	}
}

func TestProducerConservation(t *testing.T) {
	// Thread 0 posts a semaphore created with zero units; thread 1 consumes
	// the unit.
	m := newMatrix(t, 2, 0)
	m.Release(0, 0)
	mustHoldInvariants(t, m)
	m.Request(1, 0)
	m.Grant(1, 0)
	mustHoldInvariants(t, m)
	if got := m.Holds(0, 0); got != -1 {
		t.Errorf("producer holds %d units, want -1", got)
	}
	if got := m.Holds(1, 0); got != 1 {
		t.Errorf("consumer holds %d units, want 1", got)
	}
}

func TestRejectedRequestRollsBack(t *testing.T) {
	m := newMatrix(t, 1, 1)
	m.Request(0, 0)
	m.Grant(0, 0)
	before := m.Snapshot()

	// Locking a held mutex again: need 1 with nothing free.
	m.Request(0, 0)
	if res := m.Safe(); res.Safe {
		t.Fatalf("self deadlock accepted: %v", res)
	}
	m.Cancel(0, 0)

	if diff := cmp.Diff(before, m.Snapshot()); diff != "" {
		t.Errorf("rollback left state changed (-want +got):\n%s", diff)
	}
}

func TestResetResource(t *testing.T) {
	m := newMatrix(t, 2, 1, 1)
	m.Request(0, 1)
	m.Grant(0, 1)
	m.Request(1, 1)

	m.ResetResource(1, 4)
	for tid := range 2 {
		if a, n := m.Allocation[tid][1], m.Need[tid][1]; a != 0 || n != 0 {
			t.Errorf("thread %d: allocation %d need %d after reset, want 0 0", tid, a, n)
		}
	}
	if m.Available[1] != 4 || m.Total[1] != 4 {
		t.Errorf("reset column: available %d total %d, want 4 4", m.Available[1], m.Total[1])
	}
	mustHoldInvariants(t, m)
}

func TestSetThreadClearsReusedRow(t *testing.T) {
	m := newMatrix(t, 2, 2)
	m.Request(1, 0)
	m.SetThread(1)
	if got := m.Need[1][0]; got != 0 {
		t.Errorf("reused row need = %d, want 0", got)
	}
	if got := m.Threads(); got != 2 {
		t.Errorf("Threads() = %d, want 2", got)
	}
}

func TestSnapshotIsDeep(t *testing.T) {
	m := newMatrix(t, 1, 1)
	s := m.Snapshot()
	m.Request(0, 0)
	m.Grant(0, 0)
	if s.Allocation[0][0] != 0 || s.Available[0] != 1 {
		t.Errorf("snapshot changed with the matrix: %+v", s)
	}
}

func TestMisuse(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    func(m *Matrix)
	}{
		{"grant without request", func(m *Matrix) { m.Grant(0, 0) }},
		{"cancel without request", func(m *Matrix) { m.Cancel(0, 0) }},
		{"thread out of range", func(m *Matrix) { m.Request(5, 0) }},
		{"resource out of range", func(m *Matrix) { m.Request(0, 5) }},
		{"grant with nothing free", func(m *Matrix) {
			m.Request(0, 0)
			m.Grant(0, 0)
			m.Request(0, 0)
			m.Grant(0, 0)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := newMatrix(t, 1, 1)
			defer func() {
				if recover() == nil {
					t.Errorf("no panic")
				}
			}()
			tc.f(m)
		})
	}
}

func TestCheckInvariantsDetectsShape(t *testing.T) {
	m := newMatrix(t, 1, 1)
	m.Need[0] = nil
	if err := m.CheckInvariants(); err == nil {
		t.Errorf("CheckInvariants accepted a short need row")
	}
}

func TestExitedThreadKeepsUnits(t *testing.T) {
	m := newMatrix(t, 2, 1)
	m.Request(0, 0)
	m.Grant(0, 0)
	m.Exit(0)
	mustHoldInvariants(t, m)

	// Thread 1 waits for a unit only thread 0 could return.
	m.Request(1, 0)
	want := Result{Safe: false, Order: []int{}, Blocked: []int{1}}
	if diff := cmp.Diff(want, m.Safe()); diff != "" {
		t.Errorf("Safe() mismatch (-want +got):\n%s", diff)
	}
	m.Cancel(1, 0)
	want = Result{Safe: true, Order: []int{1}}
	if diff := cmp.Diff(want, m.Safe()); diff != "" {
		t.Errorf("Safe() mismatch (-want +got):\n%s", diff)
	}

	// Reusing the row makes it live again.
	m.Release(0, 0)
	m.SetThread(0)
	if m.Exited[0] {
		t.Errorf("reused row is still marked exited")
	}
	if res := m.Safe(); !res.Safe || len(res.Order) != 2 {
		t.Errorf("Safe() = %v, want both threads to finish", res)
	}
	mustHoldInvariants(t, m)
}

func TestExitWhileWaitingPanics(t *testing.T) {
	m := newMatrix(t, 1, 1)
	m.Request(0, 0)
	defer func() {
		if recover() == nil {
			t.Errorf("Exit of a waiting thread did not panic")
		}
	}()
	m.Exit(0)
}
