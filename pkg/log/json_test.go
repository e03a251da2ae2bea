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
	"testing"
)

// Tests that Level can marshal/unmarshal properly.
func TestLevelMarshal(t *testing.T) {
	lvs := []Level{Warning, Info, Debug}
	for _, lv := range lvs {
		bs, err := lv.MarshalJSON()
		if err != nil {
			t.Errorf("error marshaling %v: %v", lv, err)
		}
		var lv2 Level
		if err := lv2.UnmarshalJSON(bs); err != nil {
			t.Errorf("error unmarshaling %v: %v", bs, err)
		}
		if lv != lv2 {
			t.Errorf("marshal/unmarshal level got %v wanted %v", lv2, lv)
		}
	}
}

func TestJSONEmitter(t *testing.T) {
	tw := &testWriter{}
	l := &BasicLogger{Level: Debug, Emitter: JSONEmitter{&Writer{Next: tw}}}
	l.Warningf("deadlock avoided for tid %d", 4)
	if len(tw.lines) < 1 {
		t.Fatalf("nothing logged")
	}
	var got jsonLog
	if err := json.Unmarshal([]byte(tw.lines[0]), &got); err != nil {
		t.Fatalf("json.Unmarshal(%q): %v", tw.lines[0], err)
	}
	if got.Msg != "deadlock avoided for tid 4" {
		t.Errorf("Msg = %q", got.Msg)
	}
	if got.Level != Warning {
		t.Errorf("Level = %v, want %v", got.Level, Warning)
	}
	if got.Caller == "" {
		t.Errorf("Caller is empty")
	}
}

func TestJSONEmitterTaskTag(t *testing.T) {
	for _, tc := range []struct {
		msg     string
		wantMsg string
		pid     int
		tid     int
		tagged  bool
	}{
		{msg: "[1:0] Task created", wantMsg: "Task created", pid: 1, tid: 0, tagged: true},
		{msg: "[3:12] mutex_lock(2) = -1", wantMsg: "mutex_lock(2) = -1", pid: 3, tid: 12, tagged: true},
		{msg: "[x:1] not a tag", wantMsg: "[x:1] not a tag"},
		{msg: "ksync starting", wantMsg: "ksync starting"},
	} {
		t.Run(tc.msg, func(t *testing.T) {
			tw := &testWriter{}
			l := &BasicLogger{Level: Info, Emitter: JSONEmitter{&Writer{Next: tw}}}
			l.Infof("%s", tc.msg)
			var got jsonLog
			if err := json.Unmarshal([]byte(tw.lines[0]), &got); err != nil {
				t.Fatalf("json.Unmarshal(%q): %v", tw.lines[0], err)
			}
			if got.Msg != tc.wantMsg {
				t.Errorf("Msg = %q, want %q", got.Msg, tc.wantMsg)
			}
			if !tc.tagged {
				if got.Pid != nil || got.Tid != nil {
					t.Errorf("untagged message got pid %v tid %v", got.Pid, got.Tid)
				}
				return
			}
			if got.Pid == nil || *got.Pid != tc.pid || got.Tid == nil || *got.Tid != tc.tid {
				t.Errorf("pid, tid = %v, %v, want %d, %d", got.Pid, got.Tid, tc.pid, tc.tid)
			}
		})
	}
}

func TestLevelUnmarshalErrors(t *testing.T) {
	for _, s := range []string{`"fatal"`, "3", "-1", `warning`} {
		var l Level
		if err := l.UnmarshalJSON([]byte(s)); err == nil {
			t.Errorf("UnmarshalJSON(%s) succeeded with %v", s, l)
		}
	}
	var l Level
	if err := l.UnmarshalJSON([]byte("2")); err != nil || l != Debug {
		t.Errorf("UnmarshalJSON(2) = %v, %v, want Debug", l, err)
	}
}
