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
	"fmt"
	"time"

	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/errors/kerr"
	"ksync.dev/ksync/pkg/log"
	"ksync.dev/ksync/pkg/metric"
	"ksync.dev/ksync/pkg/sentry/arch"
	"ksync.dev/ksync/pkg/sentry/kernel"
	"ksync.dev/ksync/pkg/sentry/kernel/banker"
)

// resourceClass selects one of the two resource matrices of a process.
type resourceClass int

const (
	mutexClass resourceClass = iota
	semaphoreClass
)

func (c resourceClass) String() string {
	switch c {
	case mutexClass:
		return "mutex"
	case semaphoreClass:
		return "semaphore"
	default:
		return fmt.Sprintf("resourceClass(%d)", int(c))
	}
}

func (c resourceClass) matrix(r *kernel.Resources) *banker.Matrix {
	if c == mutexClass {
		return r.MutexMatrix()
	}
	return r.SemaphoreMatrix()
}

var classes = []string{mutexClass.String(), semaphoreClass.String()}

var (
	safetyChecks = metric.MustCreateNewUint64Metric("/ksync/deadlock/checks",
		"Number of safety checks run before blocking requests.",
		metric.NewField("class", classes))
	deadlockRejections = metric.MustCreateNewUint64Metric("/ksync/deadlock/rejections",
		"Number of requests rejected because granting them could deadlock.",
		metric.NewField("class", classes))
	checkThreads = metric.MustCreateNewDistributionMetric("/ksync/deadlock/check_threads",
		"Number of threads considered by each safety check.",
		[]float64{1, 2, 4, 8, 16, 32, 64},
		metric.NewField("class", classes))
)

// deadlockWarning reports rejected requests. A program that keeps retrying a
// rejected lock otherwise floods the log.
var deadlockWarning = log.BasicRateLimitedLogger(time.Second)

// requestUnit records that t wants a unit of resource id of class c. When
// deadlock detection is enabled and the request leaves the process unsafe,
// the request is withdrawn and EDEADLOCK returned.
//
// Precondition: the process guard is held, as r shows.
func requestUnit(t *kernel.Task, r *kernel.Resources, c resourceClass, id int) error {
	m := c.matrix(r)
	tid := int(t.ThreadID())
	m.Request(tid, id)
	if !r.DeadlockDetect() {
		return nil
	}

	safetyChecks.Increment(c.String())
	checkThreads.AddSample(float64(m.Threads()), c.String())
	res := m.Safe()
	if res.Safe {
		return nil
	}
	m.Cancel(tid, id)
	deadlockRejections.Increment(c.String())
	deadlockWarning.Warningf("%s%s %d: request rejected, threads %v could not finish", t.LogPrefix(), c, id, res.Blocked)
	return kerr.EDEADLOCK
}

// grantUnit moves the unit t requested from id's free pool to t.
func grantUnit(t *kernel.Task, c resourceClass, id int) {
	t.Process().WithResources(func(r *kernel.Resources) error {
		c.matrix(r).Grant(int(t.ThreadID()), id)
		return nil
	})
}

// EnableDeadlockDetect implements enable_deadlock_detect(2).
func EnableDeadlockDetect(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	var enabled bool
	switch args[0].Int64() {
	case rcore.DeadlockDetectOff:
	case rcore.DeadlockDetectOn:
		enabled = true
	default:
		return 0, kerr.EINVAL
	}
	t.Process().WithResources(func(r *kernel.Resources) error {
		r.SetDeadlockDetect(enabled)
		return nil
	})
	t.Infof("Deadlock detection enabled: %t", enabled)
	return 0, nil
}
