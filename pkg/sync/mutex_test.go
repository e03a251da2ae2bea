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

package sync

import (
	"testing"
)

func TestMutexExcludes(t *testing.T) {
	var (
		mu      Mutex
		wg      WaitGroup
		counter int
	)
	const goroutines, iters = 8, 1000
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iters {
				mu.Lock()
				counter++
				mu.Unlock()
				Goyield()
			}
		}()
	}
	wg.Wait()
	if counter != goroutines*iters {
		t.Errorf("counter = %d, want %d", counter, goroutines*iters)
	}
}
