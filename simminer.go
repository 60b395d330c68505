// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Fountain5405/monerosim-sub005/internal/engine"
	"github.com/Fountain5405/monerosim-sub005/internal/hooks"
	"github.com/Fountain5405/monerosim-sub005/internal/version"
)

// simMinerMain is the real main function for the agent binary.  It is
// necessary to work around the fact that deferred functions do not run when
// os.Exit() is called.
func simMinerMain() error {
	// Load configuration and parse the command line.  This also seeds the
	// engine environment for standalone runs and initializes logging.
	cfg, runCfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	ctx := shutdownListener()
	defer mainLog.Info("Shutdown complete")

	mainLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	mainLog.Infof("Agent %d: hashrate %d H/s, seed %d", runCfg.AgentID,
		runCfg.Hashrate, runCfg.GlobalSeed)

	// The loopback host stands in for a simulated node process so the agent
	// binary can run the full attach path on its own.
	host := newLoopbackHost(cfg.InitialDifficulty)
	if err := host.registerSymbols(); err != nil {
		mainLog.Errorf("Unable to register loopback host symbols: %v", err)
		return err
	}

	eng := engine.NewWithConfig(hooks.ProcessHost(), runCfg)
	if err := eng.Attach(); err != nil {
		mainLog.Errorf("Unable to attach mining engine: %v", err)
		return err
	}
	defer eng.Shutdown()

	if shutdownRequested(ctx) {
		return nil
	}

	host.announceDifficulty()
	if !host.startMining(nil, uint64(runCfg.AgentID), 1, true, true) {
		err := fmt.Errorf("mining failed to start")
		mainLog.Errorf("%v", err)
		return err
	}

	// Mine until a shutdown signal arrives.
	<-ctx.Done()
	host.stopMining(nil)
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := simMinerMain(); err != nil {
		os.Exit(1)
	}
}
