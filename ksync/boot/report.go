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

package boot

import (
	"encoding/json"
	"io"

	"ksync.dev/ksync/pkg/sentry/kernel"
)

// Report is the outcome of a scenario run.
type Report struct {
	RunID    string         `json:"run_id"`
	Scenario string         `json:"scenario"`
	Threads  []ThreadReport `json:"threads"`

	// Failures is the number of ops that did not return their expected
	// value.
	Failures int `json:"failures"`

	// Process is the state of the process when every thread had finished.
	Process kernel.Snapshot `json:"process"`

	// Invariants describes the first violated resource invariant. It is
	// empty when all hold.
	Invariants string `json:"invariants,omitempty"`
}

// ThreadReport is the outcome of one thread.
type ThreadReport struct {
	Name     string     `json:"name"`
	TID      int        `json:"tid"`
	Ops      []OpResult `json:"ops"`
	Failures int        `json:"failures"`
}

// OpResult is the outcome of one op.
type OpResult struct {
	Call   string  `json:"call"`
	Args   []int64 `json:"args,omitempty"`
	Ret    int64   `json:"ret"`
	Expect *int64  `json:"expect,omitempty"`
}

// OK returns true if every expectation and invariant held.
func (r *Report) OK() bool {
	return r.Failures == 0 && r.Invariants == ""
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(r)
}
