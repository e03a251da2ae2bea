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
	"ksync.dev/ksync/pkg/sync"
)

// processMutex guards the resource state of one process.
//
// It is not reentrant: a syscall handler takes it at most once at a time, and
// never across a suspension.
type processMutex struct {
	mu sync.Mutex
}

// Lock locks m.
// +checklocksignore
func (m *processMutex) Lock() {
	m.mu.Lock()
}

// Unlock unlocks m.
// +checklocksignore
func (m *processMutex) Unlock() {
	m.mu.Unlock()
}
