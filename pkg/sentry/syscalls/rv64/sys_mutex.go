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
	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/metric"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/kernel/ksync"
)

var resourcesCreated = metric.MustCreateNewUint64Metric("/ksync/resources/created",
	"Number of synchronization primitives created, by kind.",
	metric.NewField("kind", []string{"spin_mutex", "blocking_mutex", "semaphore", "condvar"}))

// MutexCreate implements mutex_create(2).
//
// Any argument other than rcore.MutexBlocking creates a spin mutex.
func MutexCreate(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	blocking := args[0].Int64() == rcore.MutexBlocking
	var id int
	t.Process().WithResources(func(r *kernel.Resources) error {
		id = r.CreateMutex(blocking)
		return nil
	})
	if blocking {
		resourcesCreated.Increment("blocking_mutex")
	} else {
		resourcesCreated.Increment("spin_mutex")
	}
	return uintptr(id), nil
}

// MutexLock implements mutex_lock(2).
func MutexLock(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	id, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var m ksync.Mutex
	if err := t.Process().WithResources(func(r *kernel.Resources) error {
		var err error
		if m, err = r.Mutex(id); err != nil {
			return err
		}
		return requestUnit(t, r, mutexClass, id)
	}); err != nil {
		return 0, err
	}

	m.Lock(t)
	grantUnit(t, mutexClass, id)
	return 0, nil
}

// MutexUnlock implements mutex_unlock(2).
func MutexUnlock(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	id, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	var m ksync.Mutex
	if err := t.Process().WithResources(func(r *kernel.Resources) error {
		var err error
		if m, err = r.Mutex(id); err != nil {
			return err
		}
		mm := r.MutexMatrix()
		tid := int(t.ThreadID())
		if mm.Holds(tid, id) <= 0 {
			return kerr.EPERM
		}
		mm.Release(tid, id)
		return nil
	}); err != nil {
		return 0, err
	}

	m.Unlock()
	return 0, nil
}
