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

// Package cli is the main entrypoint for ksync.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"ksync.dev/ksync/ksync/cmd"
	"ksync.dev/ksync/ksync/config"
	"ksync.dev/ksync/ksync/flag"
	"ksync.dev/ksync/pkg/log"
)

// Main is the main entrypoint.
func Main() {
	// Register all commands.
	forEachCmd(subcommands.Register)

	// Register with the main command line.
	config.RegisterFlags(flag.CommandLine)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	if path := flag.Lookup("config").Value.String(); path != "" {
		if err := config.ApplyFile(flag.CommandLine, path); err != nil {
			cmd.Fatalf("%v", err)
		}
	}

	// Create a new Config from the flags.
	conf, err := config.NewFromFlags(flag.CommandLine)
	if err != nil {
		cmd.Fatalf("%v", err)
	}

	if conf.LogFilename != "" {
		// O_APPEND so that consecutive commands share one log.
		f, err := os.OpenFile(conf.LogFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			cmd.Fatalf("error opening log file %q: %v", conf.LogFilename, err)
		}
		cmd.ErrorLogger = f
	}

	subcommand := flag.CommandLine.Arg(0)
	if conf.Debug {
		log.SetLevel(log.Debug)
	}

	startTime := time.Now()
	runID := uuid.NewString()

	var emitters log.MultiEmitter
	if cmd.ErrorLogger != nil {
		emitters = append(emitters, newEmitter(conf.LogFormat, cmd.ErrorLogger))
	}
	if len(conf.DebugLog) > 0 {
		f, err := log.OpenFile(conf.DebugLog, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, log.PatternOpts{
			Start:   startTime,
			Command: subcommand,
			RunID:   runID,
		})
		if err != nil {
			cmd.Fatalf("error opening debug log file in %q: %v", conf.DebugLog, err)
		}
		emitters = append(emitters, newEmitter(conf.DebugLogFormat, f))
	}
	if conf.AlsoLogToStderr {
		emitters = append(emitters, newEmitter(conf.DebugLogFormat, os.Stderr))
	}

	switch len(emitters) {
	case 0:
		// Stdout carries command output, so logs are discarded unless a
		// destination is given.
		log.SetTarget(newEmitter("text", io.Discard))
	case 1:
		// Use the singular emitter to avoid needless
		// `for` loop overhead when logging to a single place.
		log.SetTarget(emitters[0])
	default:
		log.SetTarget(&emitters)
	}
	if err := log.CopyStandardLogTo(log.Info); err != nil {
		cmd.Fatalf("%v", err)
	}

	const delimString = `**************** ksync ****************`
	log.Infof(delimString)
	log.Infof("%s, %s, %d CPUs, %s, PID %d, UID %d, GID %d", runtime.Version(), runtime.GOARCH, runtime.NumCPU(), runtime.GOOS, os.Getpid(), os.Getuid(), os.Getgid())
	log.Infof("Args: %v", os.Args)
	log.Infof("Run ID: %s", runID)
	conf.Log()
	log.Infof(delimString)

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	// Call the subcommand and pass in the configuration.
	subcmdCode := subcommands.Execute(ctx, conf, runID)
	if subcmdCode != subcommands.ExitSuccess {
		log.Warningf("Failure to execute command, status: %v", subcmdCode)
	}
	stop()
	os.Exit(int(subcmdCode))
}

// forEachCmd invokes the passed callback for each command supported by ksync.
func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	// Help and flags commands are generated automatically.
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")
	cb(subcommands.CommandsCommand(), "")

	cb(new(cmd.Run), "")
	cb(new(cmd.Check), "")

	const debugGroup = "debug"
	cb(new(cmd.Syscalls), debugGroup)
}

func newEmitter(format string, logFile io.Writer) log.Emitter {
	switch format {
	case "text":
		return log.GoogleEmitter{Emitter: &log.Writer{Next: logFile}}
	case "json":
		return log.JSONEmitter{Writer: &log.Writer{Next: logFile}}
	}
	cmd.Fatalf("invalid log format %q, must be 'text' or 'json'", format)
	panic("unreachable")
}
