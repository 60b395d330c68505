// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"

	"github.com/Fountain5405/monerosim-sub005/internal/hooks"
)

// loopbackHost is a minimal in-process host used when the agent binary runs
// standalone rather than bound to a simulated node process.  It publishes
// the full host symbol surface in the process-wide registry, keeps a trivial
// chain tip, and recycles every submitted block into a difficulty update so
// the engine experiences the same notification flow a real host produces --
// the moral equivalent of mining on a single connectionless node.
type loopbackHost struct {
	mtx        sync.Mutex
	difficulty uint64
	height     uint64

	// Hook implementations received from the engine during registration.
	startMining      hooks.StartMiningFunc
	stopMining       hooks.StopMiningFunc
	findNonce        hooks.FindNonceFunc
	blockFound       hooks.BlockFoundFunc
	difficultyUpdate hooks.DifficultyUpdateFunc
}

// newLoopbackHost returns a loopback host with a constant network difficulty.
func newLoopbackHost(difficulty uint64) *loopbackHost {
	return &loopbackHost{difficulty: difficulty}
}

// registerSymbols publishes the host's symbols in the process-wide registry
// so the engine can resolve them exactly the way it would against a real
// host process.
func (h *loopbackHost) registerSymbols() error {
	symbols := map[string]interface{}{
		hooks.SymRegisterStartMining: hooks.RegisterStartMiningFunc(
			func(fn hooks.StartMiningFunc) { h.startMining = fn }),
		hooks.SymRegisterStopMining: hooks.RegisterStopMiningFunc(
			func(fn hooks.StopMiningFunc) { h.stopMining = fn }),
		hooks.SymRegisterFindNonce: hooks.RegisterFindNonceFunc(
			func(fn hooks.FindNonceFunc) { h.findNonce = fn }),
		hooks.SymRegisterBlockFound: hooks.RegisterBlockFoundFunc(
			func(fn hooks.BlockFoundFunc) { h.blockFound = fn }),
		hooks.SymRegisterDifficultyUpdate: hooks.RegisterDifficultyUpdateFunc(
			func(fn hooks.DifficultyUpdateFunc) { h.difficultyUpdate = fn }),
		hooks.SymSubmitBlock: hooks.SubmitBlockFunc(h.submitBlock),
		hooks.SymStatusDiag: hooks.StatusDiagFunc(func(status string) {
			hostLog.Infof("engine status: %s", status)
		}),
	}
	for name, symbol := range symbols {
		if err := hooks.Register(name, symbol); err != nil {
			return err
		}
	}
	return nil
}

// announceDifficulty delivers the current difficulty to the engine.  It must
// be called after the engine has attached and before mining starts so the
// worker has a rate to sample against.
func (h *loopbackHost) announceDifficulty() {
	h.mtx.Lock()
	diff, height := h.difficulty, h.height
	h.mtx.Unlock()
	h.difficultyUpdate(nil, diff, height)
}

// submitBlock accepts a simulated block discovery, advances the chain tip,
// and notifies the engine of the resulting difficulty state just as a real
// host would after processing the new block.
func (h *loopbackHost) submitBlock(nonce uint32, timestamp time.Time,
	difficulty, height uint64) error {

	h.mtx.Lock()
	h.height = height
	diff := h.difficulty
	h.mtx.Unlock()

	hostLog.Infof("Accepted block: height %d, nonce %08x, difficulty %d, "+
		"timestamp %s", height, nonce, difficulty,
		timestamp.Format(time.RFC3339))
	h.difficultyUpdate(nil, diff, height)
	return nil
}
