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

// Package config provides basic infrastructure to set configuration settings
// for ksync. Each setting that can be changed from outside (usually via
// command line flags) must be added to Config, with a `flag:` tag naming the
// flag registered in RegisterFlags.
package config

import (
	"fmt"
	"reflect"
	"time"

	"ksync.dev/ksync/pkg/log"
)

// Config holds configuration that is not part of a scenario file.
type Config struct {
	// LogFilename is the filename to log to, if not empty.
	LogFilename string `flag:"log"`

	// LogFormat is the log format.
	LogFormat string `flag:"log-format"`

	// Debug indicates that debug logging should be enabled.
	Debug bool `flag:"debug"`

	// DebugLog is the path to log debug information to, if not empty.
	DebugLog string `flag:"debug-log"`

	// DebugLogFormat is the log format for debug.
	DebugLogFormat string `flag:"debug-log-format"`

	// AlsoLogToStderr allows to send log messages to stderr.
	AlsoLogToStderr bool `flag:"alsologtostderr"`

	// ConfigFile is a TOML file whose [flags] table sets flag defaults.
	ConfigFile string `flag:"config"`

	// DeadlockDetect is the initial deadlock detection setting of every
	// process. Scenarios can still toggle it with enable_deadlock_detect.
	DeadlockDetect bool `flag:"deadlock-detect"`

	// Tick is the period of the kernel timer interrupt.
	Tick time.Duration `flag:"tick"`

	// Timeout bounds the run time of a scenario. Zero means no limit.
	Timeout time.Duration `flag:"timeout"`

	// Metrics is the file Prometheus text metrics are written to after a
	// run. "-" is stdout.
	Metrics string `flag:"metrics"`
}

func (c *Config) validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"log-format", c.LogFormat},
		{"debug-log-format", c.DebugLogFormat},
	} {
		switch f.value {
		case "text", "json":
		default:
			return fmt.Errorf("invalid --%s %q, must be 'text' or 'json'", f.name, f.value)
		}
	}
	if c.Tick <= 0 {
		return fmt.Errorf("--tick must be positive, got %v", c.Tick)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}

// Log logs important aspects of the configuration to the given log function.
func (c *Config) Log() {
	log.Infof("Config:")
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		log.Infof("\t%s (--%s): %s", st.Field(i).Name, name, getVal(obj.Field(i)))
	}
}
