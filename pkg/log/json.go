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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// jsonLog is one line of JSONEmitter output. A message logged by a task
// starts with its "[pid:tid] " tag, which is lifted into Pid and Tid.
type jsonLog struct {
	Msg    string    `json:"msg"`
	Level  Level     `json:"level"`
	Time   time.Time `json:"time"`
	Caller string    `json:"caller,omitempty"`
	Pid    *int      `json:"pid,omitempty"`
	Tid    *int      `json:"tid,omitempty"`
}

// levelNames are the JSON names of each Level, indexed by value.
var levelNames = [...]string{
	Warning: "warning",
	Info:    "info",
	Debug:   "debug",
}

// MarshalJSON implements json.Marshaler.MarshalJSON.
func (l Level) MarshalJSON() ([]byte, error) {
	if int(l) >= len(levelNames) {
		return nil, fmt.Errorf("unknown level %v", l)
	}
	return strconv.AppendQuote(nil, levelNames[l]), nil
}

// UnmarshalJSON implements json.Unmarshaler.UnmarshalJSON. It accepts a
// level name or its integer value.
func (l *Level) UnmarshalJSON(b []byte) error {
	s := string(b)
	if name, err := strconv.Unquote(s); err == nil {
		for i, n := range levelNames {
			if n == name {
				*l = Level(i)
				return nil
			}
		}
	} else if v, err := strconv.ParseUint(s, 10, 32); err == nil && v < uint64(len(levelNames)) {
		*l = Level(v)
		return nil
	}
	return fmt.Errorf("unknown level %q", s)
}

// splitTaskTag splits a leading "[pid:tid] " tag off msg.
func splitTaskTag(msg string) (pid, tid int, rest string, ok bool) {
	tag, rest, found := strings.Cut(msg, "] ")
	if !found || !strings.HasPrefix(tag, "[") {
		return 0, 0, msg, false
	}
	p, t, found := strings.Cut(tag[1:], ":")
	if !found {
		return 0, 0, msg, false
	}
	pid, perr := strconv.Atoi(p)
	tid, terr := strconv.Atoi(t)
	if perr != nil || terr != nil {
		return 0, 0, msg, false
	}
	return pid, tid, rest, true
}

// JSONEmitter logs messages in json format, one object per line.
type JSONEmitter struct {
	*Writer
}

// Emit implements Emitter.Emit.
func (e JSONEmitter) Emit(depth int, level Level, timestamp time.Time, format string, v ...any) {
	j := jsonLog{
		Msg:    strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"),
		Level:  level,
		Time:   timestamp,
		Caller: callerSite(depth + 1),
	}
	if pid, tid, rest, ok := splitTaskTag(j.Msg); ok {
		j.Pid, j.Tid, j.Msg = &pid, &tid, rest
	}
	b, err := json.Marshal(j)
	if err != nil {
		panic(err)
	}
	e.Writer.Write(b)
}
