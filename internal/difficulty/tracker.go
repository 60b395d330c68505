// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty maintains the network difficulty an agent mines against.
//
// The tracker is a shared cell written only by host notifications and read by
// the mining worker.  Both sides go through one mutex, so a difficulty update
// is guaranteed visible to the worker's next loop iteration.
package difficulty

import "sync"

// Tracker holds the current network difficulty along with the chain height it
// was last updated at.
//
// All methods are safe for concurrent access.
type Tracker struct {
	mtx        sync.Mutex
	difficulty uint64
	height     uint64
}

// NewTracker returns a tracker with the provided starting difficulty and a
// height of zero.  A starting difficulty of zero is valid and keeps the
// mining worker parked until the first host notification arrives.
func NewTracker(difficulty uint64) *Tracker {
	return &Tracker{difficulty: difficulty}
}

// Update overwrites the tracked difficulty and height unconditionally.
//
// Height ordering is intentionally not enforced since the host delivers
// notifications in its own order and the simulation treats the most recently
// delivered value as authoritative.  An update for a height lower than the
// previous one is logged at warning level so out-of-order delivery is visible
// in the agent log.
func (t *Tracker) Update(difficulty, height uint64) {
	t.mtx.Lock()
	if height < t.height {
		log.Warnf("difficulty update for height %d arrived after height %d "+
			"-- accepting anyway", height, t.height)
	}
	t.difficulty = difficulty
	t.height = height
	t.mtx.Unlock()
}

// Snapshot returns a consistent view of the current difficulty and the height
// it was last updated at.
func (t *Tracker) Snapshot() (difficulty, height uint64) {
	t.mtx.Lock()
	difficulty, height = t.difficulty, t.height
	t.mtx.Unlock()
	return difficulty, height
}
