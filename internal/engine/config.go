// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
)

// Environment keys the orchestrator populates for each agent process.
const (
	// EnvHashrate is the agent's simulated hash rate in hashes per second.
	EnvHashrate = "MONEROSIM_HASHRATE"

	// EnvAgentID is the positive integer identity unique to this agent
	// within a simulation run.
	EnvAgentID = "MONEROSIM_AGENT_ID"

	// EnvGlobalSeed is the simulation-wide reproducibility seed.
	EnvGlobalSeed = "MONEROSIM_GLOBAL_SEED"

	// EnvLogLevel optionally overrides the default info logging level.
	EnvLogLevel = "MONEROSIM_LOG_LEVEL"

	// EnvLogFile optionally overrides the per-agent log file path.
	EnvLogFile = "MONEROSIM_LOG_FILE"

	// EnvMetricsFile optionally overrides the per-agent metrics file path.
	EnvMetricsFile = "MONEROSIM_METRICS_FILE"
)

// requiredEnvKeys are the keys that must be present for the engine to run.
var requiredEnvKeys = []string{EnvHashrate, EnvAgentID, EnvGlobalSeed}

const defaultLogLevel = "info"

// RunConfig holds the per-process run parameters.  It is loaded once from
// the environment on first use of the hook bridge and immutable afterward.
type RunConfig struct {
	Hashrate    uint64 `long:"hashrate" env:"MONEROSIM_HASHRATE" description:"Simulated hash rate in hashes per second"`
	AgentID     uint64 `long:"agentid" env:"MONEROSIM_AGENT_ID" description:"Agent identity unique to this simulation run"`
	GlobalSeed  int64  `long:"seed" env:"MONEROSIM_GLOBAL_SEED" description:"Simulation-wide reproducibility seed"`
	LogLevel    string `long:"loglevel" env:"MONEROSIM_LOG_LEVEL" description:"Logging level {trace, debug, info, warn, error}"`
	LogFile     string `long:"logfile" env:"MONEROSIM_LOG_FILE" description:"Per-agent log file path"`
	MetricsFile string `long:"metricsfile" env:"MONEROSIM_METRICS_FILE" description:"Per-agent metrics file path"`
}

// LogPath returns the configured log file path, defaulting to a name derived
// from the agent identity.
func (c *RunConfig) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return fmt.Sprintf("minersim-agent-%d.log", c.AgentID)
}

// MetricsPath returns the configured metrics file path, defaulting to a name
// derived from the agent identity.
func (c *RunConfig) MetricsPath() string {
	if c.MetricsFile != "" {
		return c.MetricsFile
	}
	return fmt.Sprintf("minersim-agent-%d-metrics.json", c.AgentID)
}

// LoadRunConfig reads the run parameters from the process environment.
//
// Missing required keys produce an error with kind ErrMissingConfig naming
// every absent key so the operator sees the full list in one log line rather
// than one failure per run.  Values that parse but violate their constraints
// produce ErrInvalidConfig.
func LoadRunConfig() (*RunConfig, error) {
	var missing []string
	for _, key := range requiredEnvKeys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		str := fmt.Sprintf("missing required environment configuration: %s",
			strings.Join(missing, ", "))
		return nil, makeError(ErrMissingConfig, str)
	}

	var cfg RunConfig
	parser := flags.NewParser(&cfg, flags.None)
	if _, err := parser.ParseArgs(nil); err != nil {
		str := fmt.Sprintf("unable to parse environment configuration: %v", err)
		return nil, makeError(ErrInvalidConfig, str)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.Hashrate == 0 {
		str := fmt.Sprintf("%s must be a positive integer", EnvHashrate)
		return nil, makeError(ErrInvalidConfig, str)
	}
	if cfg.AgentID == 0 {
		str := fmt.Sprintf("%s must be a positive integer", EnvAgentID)
		return nil, makeError(ErrInvalidConfig, str)
	}
	if _, ok := slog.LevelFromString(cfg.LogLevel); !ok {
		str := fmt.Sprintf("%s: unrecognized level %q", EnvLogLevel, cfg.LogLevel)
		return nil, makeError(ErrInvalidConfig, str)
	}

	return &cfg, nil
}
