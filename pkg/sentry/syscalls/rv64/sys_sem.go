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
	"math"

	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/kernel/ksync"
)

// SemaphoreCreate implements semaphore_create(2).
func SemaphoreCreate(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	count := args[0].Int64()
	if count < 0 || count > math.MaxInt32 {
		return 0, kerr.EINVAL
	}
	var id int
	t.Process().WithResources(func(r *kernel.Resources) error {
		id = r.CreateSemaphore(int(count))
		return nil
	})
	resourcesCreated.Increment("semaphore")
	return uintptr(id), nil
}

// SemaphoreUp implements semaphore_up(2).
//
// Any thread may post a semaphore. A thread that posts more than it took
// holds a negative allocation.
func SemaphoreUp(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	id, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var sem *ksync.Semaphore
	if err := t.Process().WithResources(func(r *kernel.Resources) error {
		var err error
		if sem, err = r.Semaphore(id); err != nil {
			return err
		}
		r.SemaphoreMatrix().Release(int(t.ThreadID()), id)
		return nil
	}); err != nil {
		return 0, err
	}

	sem.Up()
	return 0, nil
}

// SemaphoreDown implements semaphore_down(2).
func SemaphoreDown(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	id, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var sem *ksync.Semaphore
	if err := t.Process().WithResources(func(r *kernel.Resources) error {
		var err error
		if sem, err = r.Semaphore(id); err != nil {
			return err
		}
		return requestUnit(t, r, semaphoreClass, id)
	}); err != nil {
		return 0, err
	}

	sem.Down(t)
	grantUnit(t, semaphoreClass, id)
	return 0, nil
}
