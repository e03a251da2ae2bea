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
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/sentry/arch"
)

// Scenario is a program for one process: the resources its main thread
// creates and the syscalls each of its other threads makes.
//
//	name: self-deadlock
//	deadlock_detect: true
//	mutexes: [blocking]
//	threads:
//	  - name: worker
//	    ops:
//	      - {call: mutex_lock, args: [0], expect: ok}
//	      - {call: mutex_lock, args: [0], expect: deadlock}
type Scenario struct {
	Name string `yaml:"name"`

	// DeadlockDetect, if set, is passed to enable_deadlock_detect by the
	// main thread before any other thread starts.
	DeadlockDetect *bool `yaml:"deadlock_detect,omitempty"`

	// Mutexes lists the kind, "spin" or "blocking", of each mutex. Mutex i
	// has id i.
	Mutexes []string `yaml:"mutexes,omitempty"`

	// Semaphores lists the initial count of each semaphore.
	Semaphores []int64 `yaml:"semaphores,omitempty"`

	// Condvars is the number of condition variables.
	Condvars int `yaml:"condvars,omitempty"`

	Threads []Thread `yaml:"threads"`
}

// Thread is the op list of one thread.
type Thread struct {
	Name string `yaml:"name"`

	// Repeat is the number of times Ops run. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	Ops []Op `yaml:"ops"`
}

// Op is one syscall.
type Op struct {
	// Call is the syscall name, e.g. "mutex_lock".
	Call string `yaml:"call"`

	Args []int64 `yaml:"args,omitempty"`

	// Expect, if set, is the value the call must return.
	Expect *Ret `yaml:"expect,omitempty"`
}

// Ret is an expected syscall return value. In YAML it is an integer or one
// of "ok", "error" and "deadlock".
type Ret int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Ret) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "ok":
		*r = 0
	case "error":
		*r = rcore.RetError
	case "deadlock":
		*r = rcore.RetDeadlock
	default:
		var v int64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: expect %q is not ok, error, deadlock or an integer", n.Line, n.Value)
		}
		*r = Ret(v)
	}
	return nil
}

// Parse decodes a scenario. Unknown fields are errors.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return s, nil
}

func (s *Scenario) validate() error {
	for i, kind := range s.Mutexes {
		if kind != "spin" && kind != "blocking" {
			return fmt.Errorf("mutex %d: kind %q is not spin or blocking", i, kind)
		}
	}
	for i, count := range s.Semaphores {
		if count < 0 {
			return fmt.Errorf("semaphore %d: negative count %d", i, count)
		}
	}
	if s.Condvars < 0 {
		return fmt.Errorf("negative condvar count %d", s.Condvars)
	}
	if len(s.Threads) == 0 {
		return fmt.Errorf("no threads")
	}
	for _, th := range s.Threads {
		if th.Repeat < 0 {
			return fmt.Errorf("thread %q: negative repeat %d", th.Name, th.Repeat)
		}
		for j, op := range th.Ops {
			if len(op.Args) > len(arch.SyscallArguments{}) {
				return fmt.Errorf("thread %q op %d: %s has %d arguments", th.Name, j, op.Call, len(op.Args))
			}
		}
	}
	return nil
}
