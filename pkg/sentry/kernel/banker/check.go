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
	"fmt"
)

// Result is the verdict of the safety algorithm.
type Result struct {
	// Safe is true if every thread can finish.
	Safe bool

	// Order lists the threads in the order the algorithm let them finish.
	Order []int

	// Blocked lists the live threads that could not finish, in index
	// order. It is empty iff Safe is true.
	Blocked []int
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if r.Safe {
		return fmt.Sprintf("safe, order %v", r.Order)
	}
	return fmt.Sprintf("unsafe, blocked %v", r.Blocked)
}

// Check runs Banker's safety algorithm.
//
// need[i] is the number of units thread i still waits for. Starting from the
// free units, a thread whose whole need fits is assumed to run to completion
// and return what it holds; the state is safe iff every thread finishes.
// Negative allocations (semaphore producers) return nothing.
//
// Threads are scanned in index order. The verdict does not depend on the
// order, only Result.Order does.
func Check(available []int, allocation, need [][]int) Result {
	return check(available, allocation, need, nil)
}

// check is Check with exited threads left out: they never finish, so what
// they hold never returns to the pool, and they are reported in neither
// Order nor Blocked.
func check(available []int, allocation, need [][]int, exited []bool) Result {
	work := append([]int(nil), available...)
	finish := make([]bool, len(allocation))
	order := make([]int, 0, len(allocation))
	isExited := func(i int) bool { return i < len(exited) && exited[i] }
	live := 0
	for i := range allocation {
		if !isExited(i) {
			live++
		}
	}

	for progress := true; progress; {
		progress = false
		for i := range allocation {
			if finish[i] || isExited(i) || !fits(need[i], work) {
				continue
			}
			for j, a := range allocation[i] {
				if a > 0 {
					work[j] += a
				}
			}
			finish[i] = true
			order = append(order, i)
			progress = true
		}
	}

	res := Result{Safe: len(order) == live, Order: order}
	for i, f := range finish {
		if !f && !isExited(i) {
			res.Blocked = append(res.Blocked, i)
		}
	}
	return res
}

func fits(need, work []int) bool {
	for j, n := range need {
		if n > work[j] {
			return false
		}
	}
	return true
}
