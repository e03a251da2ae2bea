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
	"time"

	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sentry/kernel"
)

// maxSleepMillis is the longest sleep whose duration fits a time.Duration.
// Longer sleeps are clamped to it.
const maxSleepMillis = math.MaxInt64 / int64(time.Millisecond)

// Sleep implements sleep(2). The task is woken by the first timer
// interrupt at or after the deadline.
func Sleep(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	ms, ok := args[0].Index()
	if !ok {
		return 0, kerr.EINVAL
	}
	d := time.Duration(min(int64(ms), maxSleepMillis)) * time.Millisecond
	k := t.Kernel()
	deadline := k.Clock().Now().Add(d)
	k.Timers().WakeAt(deadline, t)
	t.Suspend()
	return 0, nil
}

// Yield implements yield(2).
func Yield(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	t.Yield()
	return 0, nil
}

// Gettid implements gettid(2).
func Gettid(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	return uintptr(t.ThreadID()), nil
}

// GetTime implements get_time(2).
func GetTime(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	return uintptr(t.Kernel().Clock().Now().Milliseconds()), nil
}
