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

package ilist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testEntry struct {
	Entry[*testEntry]
	value int
}

func values(l *List[*testEntry]) []int {
	var vs []int
	for e := l.Front(); e != nil; e = e.Next() {
		vs = append(vs, e.value)
	}
	return vs
}

func TestPushBackIsFIFO(t *testing.T) {
	var l List[*testEntry]
	for i := range 4 {
		l.PushBack(&testEntry{value: i})
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, values(&l)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	for want := range 4 {
		e, ok := l.PopFront()
		if !ok {
			t.Fatalf("PopFront on a non-empty list failed")
		}
		if e.value != want {
			t.Errorf("PopFront() = %d, want %d", e.value, want)
		}
	}
	if !l.Empty() {
		t.Errorf("list not empty after popping every element")
	}
	if _, ok := l.PopFront(); ok {
		t.Errorf("PopFront on an empty list succeeded")
	}
}

func TestRemove(t *testing.T) {
	var l List[*testEntry]
	es := make([]*testEntry, 5)
	for i := range es {
		es[i] = &testEntry{value: i}
		l.PushBack(es[i])
	}
	l.Remove(es[0])
	l.Remove(es[2])
	l.Remove(es[4])
	if diff := cmp.Diff([]int{1, 3}, values(&l)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	if got := l.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if l.Back() != es[3] {
		t.Errorf("Back() = %v, want %v", l.Back().value, es[3].value)
	}
}

func TestPushFront(t *testing.T) {
	var l List[*testEntry]
	l.PushBack(&testEntry{value: 1})
	l.PushFront(&testEntry{value: 0})
	if diff := cmp.Diff([]int{0, 1}, values(&l)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	l.Reset()
	if !l.Empty() {
		t.Errorf("list not empty after Reset")
	}
}
