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

//go:build deadlock

package sync

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockChecking is true if kernel locks report lock-order inversions.
const DeadlockChecking = true

func init() {
	// Tasks legitimately park on blocking mutexes for long periods, but no
	// kernel-internal lock is held across a suspension.
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

// Mutex is a mutual exclusion lock with lock-order checking.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a reader/writer mutual exclusion lock with lock-order checking.
type RWMutex struct {
	deadlock.RWMutex
}
