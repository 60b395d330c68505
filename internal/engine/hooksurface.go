// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/Fountain5405/monerosim-sub005/internal/hooks"
	"github.com/Fountain5405/monerosim-sub005/internal/mining/simminer"
)

// startMining is the engine's StartMiningFunc implementation.  The requested
// thread count and power flags mirror the host's real mining interface; the
// simulation always runs exactly one worker, so they are logged and ignored.
func (e *Engine) startMining(miner hooks.MinerContext, walletID uint64,
	threads uint32, background, ignoreBattery bool) bool {

	e.mtx.Lock()
	e.minerCtx = miner
	e.mtx.Unlock()

	log.Debugf("start_mining: wallet %d, %d threads requested, "+
		"background=%v, ignore_battery=%v", walletID, threads, background,
		ignoreBattery)
	if err := e.miner.Start(); err != nil {
		log.Errorf("unable to start mining worker: %v", err)
		return false
	}
	return true
}

// stopMining is the engine's StopMiningFunc implementation.  It blocks until
// the worker has fully exited and is a safe no-op when already stopped.
func (e *Engine) stopMining(miner hooks.MinerContext) bool {
	log.Debug("stop_mining")
	e.miner.Stop()
	return true
}

// findNonce is the engine's FindNonceFunc implementation: a single
// serialized deterministic draw for hosts that drive their own lower-level
// nonce search rather than the full mining loop.
func (e *Engine) findNonce(miner hooks.MinerContext, blob []byte, difficulty,
	height uint64, seedHash []byte) uint32 {

	nonce := e.rng.Uint32()
	log.Tracef("find_nonce: height %d, difficulty %d -> %08x", height,
		difficulty, nonce)
	return nonce
}

// blockFound is the engine's BlockFoundFunc implementation.  It records the
// peer block in the metrics; block construction for this agent's own
// discoveries happens inside the mining loop, never here.
func (e *Engine) blockFound(miner hooks.MinerContext, blob []byte, height uint64) {
	e.metrics.AddPeerBlock()
	log.Debugf("peer block accepted at height %d", height)
}

// difficultyUpdate is the engine's DifficultyUpdateFunc implementation.  It
// publishes the new difficulty and interrupts any in-flight wait so the
// worker resamples against the new rate.
func (e *Engine) difficultyUpdate(miner hooks.MinerContext, difficulty,
	height uint64) {

	log.Tracef("difficulty update: %d at height %d", difficulty, height)
	e.tracker.Update(difficulty, height)
	e.miner.Interrupt()
}

// createBlock adapts the mining loop's discovery template to the host's
// block submission callback.
func (e *Engine) createBlock(tmpl *simminer.BlockTemplate) error {
	return e.submit(tmpl.Nonce, tmpl.Timestamp, tmpl.Difficulty, tmpl.Height)
}
