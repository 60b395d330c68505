// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine ties the mining simulation together: it loads the per-agent
// run configuration, binds the simulated hook implementations to a host's
// registration entry points, and owns the collaborators (deterministic
// random source, difficulty tracker, metrics, mining loop) that back them.
//
// Each Engine is a self-contained simulation context, so a single test
// process can run several independent agents against fake hosts.
package engine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Fountain5405/monerosim-sub005/internal/difficulty"
	"github.com/Fountain5405/monerosim-sub005/internal/hooks"
	"github.com/Fountain5405/monerosim-sub005/internal/mining/simminer"
	"github.com/Fountain5405/monerosim-sub005/internal/simmetrics"
	"github.com/Fountain5405/monerosim-sub005/internal/uniform"
)

const (
	// shadowEnvKey is set in the environment of every process spawned
	// inside the virtual-time simulator.  When it is absent the engine
	// leaves the host completely untouched so the same binary runs
	// normally outside simulation.
	shadowEnvKey = "SHADOW_SPAWNED"

	// testModeEnvKey disables the engine entirely so the host can be unit
	// tested in isolation.
	testModeEnvKey = "MINERSIM_TEST_MODE"
)

// osExit is indirected so the fatal attach path can be exercised in tests.
var osExit = os.Exit

// Engine is the per-process simulation context.  It remains dormant until
// Attach succeeds, after which the host drives it exclusively through the
// registered hook implementations.
type Engine struct {
	host hooks.Host

	mtx      sync.Mutex
	attached bool
	inert    bool
	minerCtx hooks.MinerContext

	cfg     *RunConfig
	rng     *uniform.Source
	tracker *difficulty.Tracker
	metrics *simmetrics.Collector
	miner   *simminer.Miner

	submit hooks.SubmitBlockFunc
	diag   hooks.StatusDiagFunc
}

// New returns an engine that will resolve the host's symbols through the
// given adapter and load its configuration from the environment on Attach.
func New(host hooks.Host) *Engine {
	return &Engine{host: host}
}

// NewWithConfig returns an engine with a pre-loaded run configuration.  It
// is used by callers that already parsed the environment, for example to
// initialize logging before attaching.
func NewWithConfig(host hooks.Host, cfg *RunConfig) *Engine {
	return &Engine{host: host, cfg: cfg}
}

// Attach initializes the engine and binds its hook implementations to the
// host's registration entry points.
//
// The checks run in a fixed order:
//
//  1. Outside the virtual-time simulator, or with the test-mode indicator
//     set, attaching is skipped entirely and the host behaves normally.
//  2. Missing or invalid run configuration leaves the engine loaded but
//     inert: the failure is logged and the host keeps running unhooked.
//  3. A host missing any required symbol is fatal.  A partially hooked host
//     would silently fall back to real, extremely slow proof-of-work and
//     stall or desynchronize the surrounding simulation, so the process
//     terminates after flushing metrics.
//
// Attaching an already-attached engine is a no-op.
func (e *Engine) Attach() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.attached || e.inert {
		return nil
	}

	if os.Getenv(shadowEnvKey) == "" {
		log.Debugf("not running under the virtual-time simulator, leaving "+
			"host untouched (%s unset)", shadowEnvKey)
		return nil
	}
	if os.Getenv(testModeEnvKey) != "" {
		log.Infof("test mode indicator %s set, engine disabled", testModeEnvKey)
		return nil
	}

	if e.cfg == nil {
		cfg, err := LoadRunConfig()
		if err != nil {
			// Non-fatal: mining stays disabled for this process while the
			// host continues undisturbed.
			e.inert = true
			log.Errorf("mining disabled: %v", err)
			return nil
		}
		e.cfg = cfg
	}

	e.rng = uniform.NewSource(e.cfg.GlobalSeed, e.cfg.AgentID)
	e.tracker = difficulty.NewTracker(0)
	e.metrics = simmetrics.NewCollector()
	e.miner = simminer.New(&simminer.Config{
		Hashrate:    e.cfg.Hashrate,
		Rand:        e.rng,
		Tracker:     e.tracker,
		Metrics:     e.metrics,
		CreateBlock: e.createBlock,
	})

	if err := e.bindHooks(); err != nil {
		log.Errorf("%v", err)
		e.flushMetrics()
		osExit(1)
		return err
	}

	e.attached = true
	log.Infof("mining simulation engine attached (agent %d, hashrate %d, "+
		"seed %d)", e.cfg.AgentID, e.cfg.Hashrate, e.cfg.GlobalSeed)
	if e.diag != nil {
		e.diag(fmt.Sprintf("minersim attached: agent %d", e.cfg.AgentID))
	}
	return nil
}

// bindHooks resolves every required host symbol and registers the engine's
// hook implementations.  All problems are collected before reporting so the
// resulting error names every unusable symbol at once.
func (e *Engine) bindHooks() error {
	var unusable []string

	lookup := func(name string) interface{} {
		symbol, ok := e.host.Lookup(name)
		if !ok {
			unusable = append(unusable, name)
			return nil
		}
		return symbol
	}
	badType := func(name string, symbol interface{}) {
		unusable = append(unusable, fmt.Sprintf("%s (unexpected type %T)",
			name, symbol))
	}

	var regStart hooks.RegisterStartMiningFunc
	if symbol := lookup(hooks.SymRegisterStartMining); symbol != nil {
		var ok bool
		if regStart, ok = symbol.(hooks.RegisterStartMiningFunc); !ok {
			badType(hooks.SymRegisterStartMining, symbol)
		}
	}
	var regStop hooks.RegisterStopMiningFunc
	if symbol := lookup(hooks.SymRegisterStopMining); symbol != nil {
		var ok bool
		if regStop, ok = symbol.(hooks.RegisterStopMiningFunc); !ok {
			badType(hooks.SymRegisterStopMining, symbol)
		}
	}
	var regNonce hooks.RegisterFindNonceFunc
	if symbol := lookup(hooks.SymRegisterFindNonce); symbol != nil {
		var ok bool
		if regNonce, ok = symbol.(hooks.RegisterFindNonceFunc); !ok {
			badType(hooks.SymRegisterFindNonce, symbol)
		}
	}
	var regFound hooks.RegisterBlockFoundFunc
	if symbol := lookup(hooks.SymRegisterBlockFound); symbol != nil {
		var ok bool
		if regFound, ok = symbol.(hooks.RegisterBlockFoundFunc); !ok {
			badType(hooks.SymRegisterBlockFound, symbol)
		}
	}
	var regDiff hooks.RegisterDifficultyUpdateFunc
	if symbol := lookup(hooks.SymRegisterDifficultyUpdate); symbol != nil {
		var ok bool
		if regDiff, ok = symbol.(hooks.RegisterDifficultyUpdateFunc); !ok {
			badType(hooks.SymRegisterDifficultyUpdate, symbol)
		}
	}
	var submit hooks.SubmitBlockFunc
	if symbol := lookup(hooks.SymSubmitBlock); symbol != nil {
		var ok bool
		if submit, ok = symbol.(hooks.SubmitBlockFunc); !ok {
			badType(hooks.SymSubmitBlock, symbol)
		}
	}

	if len(unusable) > 0 {
		str := fmt.Sprintf("host is missing required symbols: %s",
			strings.Join(unusable, ", "))
		return makeError(ErrHostIncompatible, str)
	}

	// The diagnostics callback is optional.
	if symbol, ok := e.host.Lookup(hooks.SymStatusDiag); ok {
		if diag, ok := symbol.(hooks.StatusDiagFunc); ok {
			e.diag = diag
		} else {
			log.Warnf("host symbol %s has unexpected type %T, diagnostics "+
				"disabled", hooks.SymStatusDiag, symbol)
		}
	} else {
		log.Warnf("host does not expose %s, diagnostics disabled",
			hooks.SymStatusDiag)
	}

	e.submit = submit
	regStart(e.startMining)
	regStop(e.stopMining)
	regNonce(e.findNonce)
	regFound(e.blockFound)
	regDiff(e.difficultyUpdate)
	return nil
}

// Attached returns whether the engine has bound its hooks to the host.
func (e *Engine) Attached() bool {
	e.mtx.Lock()
	attached := e.attached
	e.mtx.Unlock()
	return attached
}

// Disabled returns whether the engine was left inert by a configuration
// failure.
func (e *Engine) Disabled() bool {
	e.mtx.Lock()
	inert := e.inert
	e.mtx.Unlock()
	return inert
}

// Config returns the loaded run configuration, or nil before Attach or when
// the engine is inert.
func (e *Engine) Config() *RunConfig {
	e.mtx.Lock()
	cfg := e.cfg
	e.mtx.Unlock()
	return cfg
}

// Metrics returns the engine's metrics collector, or nil before Attach.
func (e *Engine) Metrics() *simmetrics.Collector {
	e.mtx.Lock()
	metrics := e.metrics
	e.mtx.Unlock()
	return metrics
}

// Shutdown stops any running worker and flushes the metrics file.  It is
// safe to call multiple times; only the first flush writes.
func (e *Engine) Shutdown() {
	e.mtx.Lock()
	attached := e.attached
	e.mtx.Unlock()
	if !attached {
		return
	}

	e.miner.Stop()
	e.flushMetrics()
}

// flushMetrics serializes the metrics file if the collector exists.
func (e *Engine) flushMetrics() {
	if e.metrics == nil {
		return
	}
	path := e.cfg.MetricsPath()
	if err := e.metrics.WriteFile(path, e.cfg.AgentID, e.cfg.Hashrate); err != nil {
		log.Errorf("unable to write metrics file %s: %v", path, err)
		return
	}
	log.Infof("metrics written to %s", path)
}
