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

package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"ksync.dev/ksync/ksync/flag"
)

// fileConfig is the layout of a --config file:
//
//	[flags]
//	  debug = true
//	  tick = "5ms"
type fileConfig struct {
	Flags map[string]any `toml:"flags"`
}

// ApplyFile sets the flags listed in the [flags] table of the TOML file at
// path. Flags that were already set on the command line keep their value.
func ApplyFile(flagSet *flag.FlagSet, path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("config file %q: unknown keys %v", path, keys)
	}

	explicit := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	for name, v := range fc.Flags {
		if name == "config" {
			return fmt.Errorf("config file %q: flag %q cannot be set from a config file", path, name)
		}
		fl := flagSet.Lookup(name)
		if fl == nil {
			return fmt.Errorf("config file %q: unknown flag %q", path, name)
		}
		if explicit[name] {
			continue
		}
		var val string
		switch v := v.(type) {
		case string:
			val = v
		case bool, int64, float64:
			val = fmt.Sprint(v)
		default:
			return fmt.Errorf("config file %q: flag %q has unsupported value %v (%T)", path, name, v, v)
		}
		if err := fl.Value.Set(val); err != nil {
			return fmt.Errorf("config file %q: error setting flag %s=%q: %w", path, name, val, err)
		}
	}
	return nil
}
