// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hooks defines the integration surface between the mining
// simulation engine and a simulated host node.
//
// A host exposes named symbols: five registration entry points the engine
// binds its hook implementations to, one block submission callback, and an
// optional diagnostics callback.  Production hosts publish their symbols in
// the process-wide registry; tests supply a Host implementation directly.
package hooks

import "time"

// Names of the symbols a simulated host exposes.  The five registration
// entry points are required along with the block submission callback; the
// diagnostics callback is optional.
const (
	// SymRegisterStartMining accepts the engine's StartMiningFunc.
	SymRegisterStartMining = "register_start_mining"

	// SymRegisterStopMining accepts the engine's StopMiningFunc.
	SymRegisterStopMining = "register_stop_mining"

	// SymRegisterFindNonce accepts the engine's FindNonceFunc.
	SymRegisterFindNonce = "register_find_nonce"

	// SymRegisterBlockFound accepts the engine's BlockFoundFunc.
	SymRegisterBlockFound = "register_block_found"

	// SymRegisterDifficultyUpdate accepts the engine's DifficultyUpdateFunc.
	SymRegisterDifficultyUpdate = "register_difficulty_update"

	// SymSubmitBlock is the host callback the mining loop invokes with each
	// simulated block discovery.
	SymSubmitBlock = "submit_block"

	// SymStatusDiag is an optional host callback for one-line diagnostic
	// status reports.
	SymStatusDiag = "mining_status_diag"
)

// RequiredSymbols lists every symbol a host must expose for the engine to
// attach.  A host missing any of these is incompatible and attaching to it
// is a fatal error.
var RequiredSymbols = []string{
	SymRegisterStartMining,
	SymRegisterStopMining,
	SymRegisterFindNonce,
	SymRegisterBlockFound,
	SymRegisterDifficultyUpdate,
	SymSubmitBlock,
}

// MinerContext is the opaque host-supplied miner context threaded through
// every hook invocation.  The engine never inspects it.
type MinerContext = interface{}

// StartMiningFunc starts simulated mining.  The thread count, background
// flag, and battery flag mirror the host's real mining interface; the
// simulation always runs exactly one worker and ignores them beyond logging.
// It reports whether mining is running when it returns.
type StartMiningFunc func(miner MinerContext, walletID uint64, threads uint32,
	background, ignoreBattery bool) bool

// StopMiningFunc stops simulated mining and blocks until the worker has
// fully exited.  It reports whether mining is stopped when it returns.
type StopMiningFunc func(miner MinerContext) bool

// FindNonceFunc returns a deterministic nonce for hosts that drive their own
// lower-level nonce search rather than the full mining loop.
type FindNonceFunc func(miner MinerContext, blob []byte, difficulty,
	height uint64, seedHash []byte) uint32

// BlockFoundFunc notifies the engine that a block mined by some other agent
// was accepted by the host.
type BlockFoundFunc func(miner MinerContext, blob []byte, height uint64)

// DifficultyUpdateFunc notifies the engine of the current network difficulty
// at the given height.
type DifficultyUpdateFunc func(miner MinerContext, difficulty, height uint64)

// Registration entry point types.  A host exposes one symbol of each type
// and stores the implementation it receives for later invocation.
type (
	RegisterStartMiningFunc      func(StartMiningFunc)
	RegisterStopMiningFunc       func(StopMiningFunc)
	RegisterFindNonceFunc        func(FindNonceFunc)
	RegisterBlockFoundFunc       func(BlockFoundFunc)
	RegisterDifficultyUpdateFunc func(DifficultyUpdateFunc)
)

// SubmitBlockFunc is the host's block-creation callback.  The engine invokes
// it with the deterministic nonce, the discovery timestamp, and the
// difficulty and height the block was mined against.  The host constructs
// and processes the actual block; any error it returns is counted against
// the agent's error metric and the attempt is dropped.
type SubmitBlockFunc func(nonce uint32, timestamp time.Time, difficulty,
	height uint64) error

// StatusDiagFunc is the optional host diagnostics callback.
type StatusDiagFunc func(status string)

// Host resolves host-exposed symbols by name.  The production implementation
// is the process-wide registry; tests provide direct fakes so the engine can
// be exercised without a real host.
type Host interface {
	// Lookup returns the symbol registered under the given name.
	Lookup(name string) (interface{}, bool)
}
