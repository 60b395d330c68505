// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/Fountain5405/monerosim-sub005/internal/difficulty"
	"github.com/Fountain5405/monerosim-sub005/internal/engine"
	"github.com/Fountain5405/monerosim-sub005/internal/mining/simminer"
)

// levelMirrorTags identify formatted log lines that are mirrored to the
// process-wide diagnostic stream in addition to the per-agent log file.
var levelMirrorTags = [][]byte{[]byte("[WRN]"), []byte("[ERR]"), []byte("[CRT]")}

// logWriter implements an io.Writer that outputs to the per-agent log file
// managed by the rotator and mirrors warning and error lines to stderr so
// operator-visible problems surface without tailing every agent log.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if logRotator != nil {
		logRotator.Write(p)
	}
	for _, tag := range levelMirrorTags {
		if bytes.Contains(p, tag) {
			os.Stderr.Write(p)
			break
		}
	}
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all
// subsystem loggers are created from it, tagged with both the subsystem and
// the agent identity so every line in a merged view attributes to one agent.
//
// The loggers are created by initSubsystemLoggers once the agent identity is
// known and remain disabled until then.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.  The backend must not be used before the log rotator has
	// been initialized, or data races and/or nil pointer dereferences will
	// occur.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	mainLog = slog.Disabled
	hostLog = slog.Disabled

	// subsystemLoggers maps each subsystem identifier to its associated
	// logger so levels can be set uniformly.
	subsystemLoggers map[string]slog.Logger
)

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory.  It must be called before the
// package-global log rotator variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
			os.Exit(1)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	logRotator = r
}

// initSubsystemLoggers creates the subsystem loggers with tags carrying the
// agent identity and hands them to each package that logs.
func initSubsystemLoggers(agentID uint64) {
	tag := func(subsystem string) string {
		return fmt.Sprintf("%s-%d", subsystem, agentID)
	}

	mainLog = backendLog.Logger(tag("MAIN"))
	hostLog = backendLog.Logger(tag("HOST"))
	engineLog := backendLog.Logger(tag("MEGN"))
	minerLog := backendLog.Logger(tag("MINR"))
	diffLog := backendLog.Logger(tag("DIFF"))

	engine.UseLogger(engineLog)
	simminer.UseLogger(minerLog)
	difficulty.UseLogger(diffLog)

	subsystemLoggers = map[string]slog.Logger{
		"MAIN": mainLog,
		"HOST": hostLog,
		"MEGN": engineLog,
		"MINR": minerLog,
		"DIFF": diffLog,
	}
}

// setLogLevels sets the log level for all subsystem loggers.  Invalid level
// strings are ignored and leave the default level in place.
func setLogLevels(logLevel string) {
	level, ok := slog.LevelFromString(logLevel)
	if !ok {
		return
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
