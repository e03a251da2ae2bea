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

package testutil

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollRetries(t *testing.T) {
	var calls atomic.Int32
	err := Poll(func() error {
		if calls.Add(1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("callback ran %d times, want 3", got)
	}
}

func TestWaitForTimeout(t *testing.T) {
	err := WaitFor("never", func() bool { return false }, 20*time.Millisecond)
	if err == nil {
		t.Fatalf("WaitFor on a false condition returned nil")
	}
}
