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

func TestCheck(t *testing.T) {
	for _, tc := range []struct {
		name       string
		available  []int
		allocation [][]int
		need       [][]int
		want       Result
	}{
		{
			name:       "no threads",
			available:  []int{1},
			allocation: [][]int{},
			need:       [][]int{},
			want:       Result{Safe: true, Order: []int{}},
		},
		{
			name:       "small needs fit",
			available:  []int{3, 2},
			allocation: [][]int{{0, 0}, {0, 0}},
			need:       [][]int{{1, 0}, {0, 1}},
			want:       Result{Safe: true, Order: []int{0, 1}},
		},
		{
			// A need equal to the free units fits.
			name:       "exact fit",
			available:  []int{3, 2},
			allocation: [][]int{{0, 0}, {0, 0}},
			need:       [][]int{{3, 0}, {0, 2}},
			want:       Result{Safe: true, Order: []int{0, 1}},
		},
		{
			name:       "no need fits",
			available:  []int{3, 2},
			allocation: [][]int{{0, 0}, {0, 0}},
			need:       [][]int{{4, 0}, {0, 3}},
			want:       Result{Safe: false, Order: []int{}, Blocked: []int{0, 1}},
		},
		{
			// Thread 1 can only finish after thread 0 returns its unit, and
			// thread 0 is scanned first.
			name:       "release enables later thread",
			available:  []int{0, 1},
			allocation: [][]int{{1, 0}, {0, 0}},
			need:       [][]int{{0, 1}, {1, 0}},
			want:       Result{Safe: true, Order: []int{0, 1}},
		},
		{
			// Thread 0 only becomes finishable after thread 1, so a second
			// pass is required.
			name:       "second pass",
			available:  []int{0, 1},
			allocation: [][]int{{0, 0}, {1, 0}},
			need:       [][]int{{1, 0}, {0, 1}},
			want:       Result{Safe: true, Order: []int{1, 0}},
		},
		{
			name:       "circular wait",
			available:  []int{0, 0},
			allocation: [][]int{{1, 0}, {0, 1}},
			need:       [][]int{{0, 1}, {1, 0}},
			want:       Result{Safe: false, Order: []int{}, Blocked: []int{0, 1}},
		},
		{
			// A producer's negative allocation does not shrink work.
			name:       "producer",
			available:  []int{1},
			allocation: [][]int{{-1}, {0}},
			need:       [][]int{{0}, {1}},
			want:       Result{Safe: true, Order: []int{0, 1}},
		},
		{
			name:       "partial",
			available:  []int{0, 0},
			allocation: [][]int{{1, 0}, {0, 1}, {0, 0}},
			need:       [][]int{{0, 1}, {1, 0}, {0, 0}},
			want:       Result{Safe: false, Order: []int{2}, Blocked: []int{0, 1}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Check(tc.available, tc.allocation, tc.need)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Check() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckDoesNotModifyAvailable(t *testing.T) {
	available := []int{1, 1}
	Check(available, [][]int{{1, 1}}, [][]int{{0, 0}})
	if diff := cmp.Diff([]int{1, 1}, available); diff != "" {
		t.Errorf("available modified (-want +got):\n%s", diff)
	}
}

func TestCheckOrderIndependent(t *testing.T) {
	// The same state with the threads listed in reverse order.
	available := []int{1, 0, 0}
	allocation := [][]int{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}}
	need := [][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	revAlloc := [][]int{allocation[2], allocation[1], allocation[0]}
	revNeed := [][]int{need[2], need[1], need[0]}

	if a, b := Check(available, allocation, need).Safe, Check(available, revAlloc, revNeed).Safe; a != b {
		t.Errorf("verdict depends on scan order: %t vs %t", a, b)
	}
}
