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
package log

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// GoogleEmitter wraps an Emitter and prefixes every message with a header
// that glog readers understand:
//
//	Lmmdd hh:mm:ss.uuuuuu pid file:line] msg
type GoogleEmitter struct {
	// Emitter is the underlying emitter.
	Emitter
}

// glogTimeLayout renders the mmdd hh:mm:ss.uuuuuu part of the header.
const glogTimeLayout = "0102 15:04:05.000000"

// glogPid is the process id, space padded to the 7 columns glog uses.
var glogPid = padLeft(strconv.Itoa(os.Getpid()), 7)

func padLeft(s string, width int) string {
	if n := width - len(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// levelChar is the one letter level tag of a header.
func levelChar(level Level) byte {
	switch level {
	case Debug:
		return 'D'
	case Info:
		return 'I'
	default:
		return 'W'
	}
}

// callerSite returns "file:line" for the frame skip levels above its
// caller, with the directory trimmed.
func callerSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???:0"
	}
	if slash := strings.LastIndexByte(file, '/'); slash >= 0 {
		file = file[slash+1:]
	}
	return file + ":" + strconv.Itoa(line)
}

// Emit implements Emitter.Emit.
func (g GoogleEmitter) Emit(depth int, level Level, timestamp time.Time, format string, args ...any) {
	var local [256]byte
	b := append(local[:0], levelChar(level))
	b = timestamp.AppendFormat(b, glogTimeLayout)
	b = append(b, ' ')
	b = append(b, glogPid...)
	b = append(b, ' ')
	b = append(b, callerSite(depth+1)...)
	b = append(b, "] "...)
	b = append(b, format...)
	b = append(b, '\n')
	g.Emitter.Emit(depth+1, level, timestamp, string(b), args...)
}
