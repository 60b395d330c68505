// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	flags "github.com/jessevdk/go-flags"

	"github.com/Fountain5405/monerosim-sub005/internal/engine"
	"github.com/Fountain5405/monerosim-sub005/internal/version"
)

const (
	defaultHashrate          = 1000000
	defaultAgentID           = 1
	defaultGlobalSeed        = 1
	defaultInitialDifficulty = 1000000000
)

// config defines the command line configuration options for the agent
// binary.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Hashrate          uint64 `short:"H" long:"hashrate" description:"Simulated hash rate in hashes per second"`
	AgentID           uint64 `short:"a" long:"agentid" description:"Agent identity unique to this simulation run"`
	GlobalSeed        int64  `short:"s" long:"seed" description:"Simulation-wide reproducibility seed"`
	LogLevel          string `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error}"`
	LogFile           string `long:"logfile" description:"Per-agent log file path"`
	MetricsFile       string `long:"metricsfile" description:"Per-agent metrics file path"`
	InitialDifficulty uint64 `long:"difficulty" description:"Starting network difficulty for the loopback host"`
	ShowVersion       bool   `short:"V" long:"version" description:"Display version information and exit"`
}

// seedEngineEnv populates the environment the mining engine reads its run
// parameters from, exactly the way the orchestrator would for a real agent
// process.  Keys already present in the environment win so an orchestrated
// run is never overridden by command line defaults.
func seedEngineEnv(cfg *config) {
	setIfAbsent := func(key, value string) {
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	setIfAbsent(engine.EnvHashrate, strconv.FormatUint(cfg.Hashrate, 10))
	setIfAbsent(engine.EnvAgentID, strconv.FormatUint(cfg.AgentID, 10))
	setIfAbsent(engine.EnvGlobalSeed, strconv.FormatInt(cfg.GlobalSeed, 10))
	if cfg.LogLevel != "" {
		setIfAbsent(engine.EnvLogLevel, cfg.LogLevel)
	}
	if cfg.LogFile != "" {
		setIfAbsent(engine.EnvLogFile, cfg.LogFile)
	}
	if cfg.MetricsFile != "" {
		setIfAbsent(engine.EnvMetricsFile, cfg.MetricsFile)
	}

	// Standalone runs are not spawned by the simulator, so mark the
	// environment ourselves or the engine will refuse to attach.
	setIfAbsent("SHADOW_SPAWNED", "standalone")
}

// loadConfig initializes and parses the config using command line options,
// seeds the engine environment for standalone runs, and initializes logging
// from the resulting run configuration.
//
// The above results in the agent binary functioning properly both standalone
// with command line defaults and under the orchestrator where the
// environment is authoritative.
func loadConfig() (*config, *engine.RunConfig, error) {
	cfg := config{
		Hashrate:          defaultHashrate,
		AgentID:           defaultAgentID,
		GlobalSeed:        defaultGlobalSeed,
		InitialDifficulty: defaultInitialDifficulty,
	}
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	if cfg.ShowVersion {
		fmt.Printf("minersim-agent version %s (Go version %s)\n",
			version.String(), runtime.Version())
		os.Exit(0)
	}

	seedEngineEnv(&cfg)

	runCfg, err := engine.LoadRunConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid run configuration: %v\n", err)
		return nil, nil, err
	}

	initLogRotator(runCfg.LogPath())
	initSubsystemLoggers(runCfg.AgentID)
	setLogLevels(runCfg.LogLevel)

	return &cfg, runCfg, nil
}
