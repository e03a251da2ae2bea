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

// Package banker implements deadlock avoidance for process-local resources.
//
// A Matrix tracks, for one class of resource (mutexes or semaphores), how
// many units of each resource are free, held by each thread and requested by
// each thread. Before a thread is allowed to block on a resource, the
// request is recorded in the matrix and Banker's safety algorithm decides
// whether every thread could still run to completion. Requests that would
// leave the process in an unsafe state are rejected instead of blocking.
//
// Matrix is not synchronized. The owning process serializes all access.
package banker

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// Matrix is the resource state of one resource class in one process.
//
// Rows are indexed by thread id and columns by resource id.
type Matrix struct {
	// Available is the number of units of each resource not allocated to
	// any thread.
	Available []int `json:"available" toml:"available"`

	// Allocation is the number of units of each resource held by each
	// thread. Semaphore allocation may be negative: a thread that posts a
	// semaphore it never waited on is a producer and holds a negative
	// number of units.
	Allocation [][]int `json:"allocation" toml:"allocation"`

	// Need is the number of units of each resource that each thread has
	// requested and not yet been granted.
	Need [][]int `json:"need" toml:"need"`

	// Total is the number of units each resource was created with. It is
	// constant for the lifetime of a resource slot.
	Total []int `json:"total" toml:"total"`

	// Exited marks the rows of threads that have exited. Units they still
	// hold are never returned. Exited is nil or has one entry per row; nil
	// means every thread is live.
	Exited []bool `json:"exited,omitempty" toml:"exited"`
}

// Threads returns the number of thread rows.
func (m *Matrix) Threads() int {
	return len(m.Allocation)
}

// Resources returns the number of resource columns.
func (m *Matrix) Resources() int {
	return len(m.Available)
}

// AddResource appends a resource column with initial free units and returns
// its index.
func (m *Matrix) AddResource(initial int) int {
	m.Available = append(m.Available, initial)
	m.Total = append(m.Total, initial)
	for t := range m.Allocation {
		m.Allocation[t] = append(m.Allocation[t], 0)
		m.Need[t] = append(m.Need[t], 0)
	}
	return len(m.Available) - 1
}

// ResetResource reinitializes column r for a resource recreated in a reused
// slot: initial free units and no allocation or need for any thread.
func (m *Matrix) ResetResource(r, initial int) {
	m.checkResource(r)
	m.Available[r] = initial
	m.Total[r] = initial
	for t := range m.Allocation {
		m.Allocation[t][r] = 0
		m.Need[t][r] = 0
	}
}

// SetThread makes row t a fresh thread row. The matrix grows with zero rows
// as needed; an existing row t, left behind by an exited thread whose id is
// being reused, is cleared.
//
// Precondition: the previous owner of row t holds no units.
func (m *Matrix) SetThread(t int) {
	if t < 0 {
		panic(fmt.Sprintf("negative thread id %d", t))
	}
	for len(m.Allocation) <= t {
		m.Allocation = append(m.Allocation, make([]int, len(m.Available)))
		m.Need = append(m.Need, make([]int, len(m.Available)))
	}
	for len(m.Exited) < len(m.Allocation) {
		m.Exited = append(m.Exited, false)
	}
	clear(m.Allocation[t])
	clear(m.Need[t])
	m.Exited[t] = false
}

// Exit marks row t as belonging to an exited thread. The row keeps its
// allocation and stays out of the safety check until SetThread reuses it.
func (m *Matrix) Exit(t int) {
	if t < 0 || t >= len(m.Allocation) {
		panic(fmt.Sprintf("thread %d out of range [0, %d)", t, len(m.Allocation)))
	}
	for r, n := range m.Need[t] {
		if n != 0 {
			panic(fmt.Sprintf("thread %d exited waiting for %d units of resource %d", t, n, r))
		}
	}
	for len(m.Exited) < len(m.Allocation) {
		m.Exited = append(m.Exited, false)
	}
	m.Exited[t] = true
}

// Request records that thread t wants one more unit of resource r.
func (m *Matrix) Request(t, r int) {
	m.check(t, r)
	m.Need[t][r]++
}

// Cancel withdraws a request recorded by Request.
func (m *Matrix) Cancel(t, r int) {
	m.check(t, r)
	if m.Need[t][r] <= 0 {
		panic(fmt.Sprintf("cancel of resource %d by thread %d with no pending request", r, t))
	}
	m.Need[t][r]--
}

// Grant moves one requested unit of r from the free pool to thread t.
func (m *Matrix) Grant(t, r int) {
	m.check(t, r)
	if m.Need[t][r] <= 0 {
		panic(fmt.Sprintf("grant of resource %d to thread %d with no pending request", r, t))
	}
	if m.Available[r] <= 0 {
		panic(fmt.Sprintf("grant of resource %d to thread %d with no available units", r, t))
	}
	m.Need[t][r]--
	m.Allocation[t][r]++
	m.Available[r]--
}

// Release returns one unit of r from thread t to the free pool.
func (m *Matrix) Release(t, r int) {
	m.check(t, r)
	m.Allocation[t][r]--
	m.Available[r]++
}

// Holds returns the number of units of r allocated to thread t.
func (m *Matrix) Holds(t, r int) int {
	m.check(t, r)
	return m.Allocation[t][r]
}

// Safe runs the safety check on the current state.
func (m *Matrix) Safe() Result {
	m.checkShape()
	return check(m.Available, m.Allocation, m.Need, m.Exited)
}

// Snapshot returns a deep copy of m.
func (m *Matrix) Snapshot() Matrix {
	return *deepcopy.Copy(m).(*Matrix)
}

// CheckInvariants verifies the matrix shape, that no resource has negative
// free units and that every unit is either free or allocated.
func (m *Matrix) CheckInvariants() error {
	if err := m.shapeError(); err != nil {
		return err
	}
	for r := range m.Available {
		if m.Available[r] < 0 {
			return fmt.Errorf("resource %d: %d available units", r, m.Available[r])
		}
		sum := m.Available[r]
		for t := range m.Allocation {
			if m.Need[t][r] < 0 {
				return fmt.Errorf("resource %d: thread %d needs %d units", r, t, m.Need[t][r])
			}
			sum += m.Allocation[t][r]
		}
		if sum != m.Total[r] {
			return fmt.Errorf("resource %d: available plus allocated is %d, created with %d", r, sum, m.Total[r])
		}
	}
	return nil
}

func (m *Matrix) shapeError() error {
	if len(m.Total) != len(m.Available) {
		return fmt.Errorf("%d totals for %d resources", len(m.Total), len(m.Available))
	}
	if len(m.Need) != len(m.Allocation) {
		return fmt.Errorf("%d need rows for %d allocation rows", len(m.Need), len(m.Allocation))
	}
	if m.Exited != nil && len(m.Exited) != len(m.Allocation) {
		return fmt.Errorf("%d exited flags for %d threads", len(m.Exited), len(m.Allocation))
	}
	for t := range m.Allocation {
		if len(m.Allocation[t]) != len(m.Available) || len(m.Need[t]) != len(m.Available) {
			return fmt.Errorf("thread %d: row widths %d/%d for %d resources", t, len(m.Allocation[t]), len(m.Need[t]), len(m.Available))
		}
	}
	return nil
}

func (m *Matrix) checkShape() {
	if err := m.shapeError(); err != nil {
		panic(fmt.Sprintf("malformed resource matrix: %v", err))
	}
}

func (m *Matrix) checkResource(r int) {
	if r < 0 || r >= len(m.Available) {
		panic(fmt.Sprintf("resource %d out of range [0, %d)", r, len(m.Available)))
	}
}

func (m *Matrix) check(t, r int) {
	m.checkResource(r)
	if t < 0 || t >= len(m.Allocation) {
		panic(fmt.Sprintf("thread %d out of range [0, %d)", t, len(m.Allocation)))
	}
}
