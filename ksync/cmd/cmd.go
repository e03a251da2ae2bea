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

// Package cmd holds implementations of the ksync commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"ksync.dev/ksync/pkg/log"
)

// ErrorLogger is where error messages should be written to. These messages
// are consumed by the caller that invoked ksync.
var ErrorLogger io.Writer

// Fatalf logs the same message to ErrorLogger, stderr and the debug log, and
// exits with status 128.
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	log.Warningf("FATAL ERROR: "+format, args...)
	if ErrorLogger != nil {
		fmt.Fprintf(ErrorLogger, format+"\n", args...)
	}
	os.Exit(128)
}

// createOutput opens path for writing. "-" and "" are stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

// Close implements io.Closer.Close.
func (nopCloser) Close() error { return nil }
