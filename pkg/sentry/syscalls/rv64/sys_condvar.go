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

package rv64

import (
	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/kernel/ksync"
)

// CondvarCreate implements condvar_create(2).
func CondvarCreate(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	var id int
	t.Process().WithResources(func(r *kernel.Resources) error {
		id = r.CreateCondvar()
		return nil
	})
	resourcesCreated.Increment("condvar")
	return uintptr(id), nil
}

// CondvarSignal implements condvar_signal(2).
func CondvarSignal(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	id, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var c *ksync.Condvar
	if err := t.Process().WithResources(func(r *kernel.Resources) (err error) {
		c, err = r.Condvar(id)
		return err
	}); err != nil {
		return 0, err
	}

	if !c.Signal() {
		t.Debugf("condvar_signal(%d): no waiter", id)
	}
	return 0, nil
}

// CondvarWait implements condvar_wait(2).
//
// The mutex is given up while waiting, so its unit moves back to the free
// pool and becomes an ungranted request until Wait re-locks it. No safety
// check runs for that request: the caller must get its mutex back.
func CondvarWait(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	cid, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	mid, ok := args[1].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var (
		c *ksync.Condvar
		m ksync.Mutex
	)
	if err := t.Process().WithResources(func(r *kernel.Resources) error {
		var err error
		if c, err = r.Condvar(cid); err != nil {
			return err
		}
		if m, err = r.Mutex(mid); err != nil {
			return err
		}
		mm := r.MutexMatrix()
		tid := int(t.ThreadID())
		if mm.Holds(tid, mid) <= 0 {
			return kerr.EPERM
		}
		mm.Release(tid, mid)
		mm.Request(tid, mid)
		return nil
	}); err != nil {
		return 0, err
	}

	c.Wait(t, m)
	grantUnit(t, mutexClass, mid)
	return 0, nil
}
