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

// Package kerr contains the kernel's syscall errors exported as error
// interface pointers. This allows for fast comparison and return operations
// comparable to unix.Errno constants.
package kerr

import (
	"golang.org/x/sys/unix"
	"ksync.dev/ksync/pkg/abi/rcore"
	"ksync.dev/ksync/pkg/errors"
)

// The following errors carry the unix.Errno that best describes the failure
// for logs, and the teaching kernel's return value: -1 for every argument
// error and -0xDEAD for a rejected resource request.
var (
	EPERM  = errors.New(unix.EPERM, rcore.RetError, "operation not permitted")
	EINVAL = errors.New(unix.EINVAL, rcore.RetError, "invalid argument")
	ENOSYS = errors.New(unix.ENOSYS, rcore.RetError, "invalid system call number")

	// EDEADLOCK is returned when granting a request could leave the process
	// in an unsafe state.
	EDEADLOCK = errors.New(unix.EDEADLK, rcore.RetDeadlock, "resource deadlock would occur")
)

// ToReturn converts the result of a syscall handler into the value returned
// to the application.
func ToReturn(val uintptr, err error) int64 {
	if err == nil {
		return int64(val)
	}
	if e, ok := err.(*errors.Error); ok {
		return e.Return()
	}
	return rcore.RetError
}

// Equals compares a kerr to any error.
func Equals(e *errors.Error, err error) bool {
	if err == nil {
		return e == nil
	}
	ke, ok := err.(*errors.Error)
	return ok && ke == e
}

// ToUnix converts an error to its unix.Errno, if it has one.
func ToUnix(err error) (unix.Errno, bool) {
	if e, ok := err.(*errors.Error); ok && e != nil {
		return e.Errno(), true
	}
	return 0, false
}
