// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package simmetrics accumulates per-agent mining counters for the lifetime
// of the process and serializes them exactly once to a structured file.  The
// metrics file is the only artifact external analysis tooling consumes.
package simmetrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Collector houses cumulative mining metrics for a single agent.  Counters
// are monotonically non-decreasing for the lifetime of the process.
//
// All methods are safe for concurrent access.
type Collector struct {
	blocksFound atomic.Uint64
	iterations  atomic.Uint64
	peerBlocks  atomic.Uint64
	errors      atomic.Uint64

	mtx        sync.Mutex
	start      time.Time
	lastBlock  time.Time
	miningTime time.Duration

	writeOnce sync.Once
}

// NewCollector returns a collector with its start time set to now.
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// AddIteration records one pass of the mining loop (one discovery-time
// sample drawn).
func (c *Collector) AddIteration() {
	c.iterations.Add(1)
}

// AddBlockFound records a discovered block along with the simulated time the
// worker spent mining it.
func (c *Collector) AddBlockFound(minedFor time.Duration) {
	c.blocksFound.Add(1)

	c.mtx.Lock()
	c.lastBlock = time.Now()
	c.miningTime += minedFor
	c.mtx.Unlock()
}

// AddPeerBlock records a block-found notification for a block mined by some
// other agent.
func (c *Collector) AddPeerBlock() {
	c.peerBlocks.Add(1)
}

// AddError records a failed mining attempt.
func (c *Collector) AddError() {
	c.errors.Add(1)
}

// Snapshot is a point-in-time copy of the collector suitable for inspection
// and serialization.
type Snapshot struct {
	AgentID        uint64  `json:"agent_id"`
	Hashrate       uint64  `json:"hashrate"`
	BlocksFound    uint64  `json:"blocks_found"`
	Iterations     uint64  `json:"iterations"`
	PeerBlocks     uint64  `json:"peer_blocks"`
	Errors         uint64  `json:"errors"`
	StartTime      int64   `json:"start_time_unix"`
	LastBlockTime  int64   `json:"last_block_time_unix,omitempty"`
	TotalMiningSec float64 `json:"total_mining_seconds"`
	AvgBlockSec    float64 `json:"avg_block_seconds"`
}

// Snapshot returns a consistent copy of the current metrics for the given
// agent identity and hashrate.
func (c *Collector) Snapshot(agentID, hashrate uint64) Snapshot {
	c.mtx.Lock()
	start, lastBlock, miningTime := c.start, c.lastBlock, c.miningTime
	c.mtx.Unlock()

	snap := Snapshot{
		AgentID:        agentID,
		Hashrate:       hashrate,
		BlocksFound:    c.blocksFound.Load(),
		Iterations:     c.iterations.Load(),
		PeerBlocks:     c.peerBlocks.Load(),
		Errors:         c.errors.Load(),
		StartTime:      start.Unix(),
		TotalMiningSec: miningTime.Seconds(),
	}
	if !lastBlock.IsZero() {
		snap.LastBlockTime = lastBlock.Unix()
	}
	if snap.BlocksFound > 0 {
		snap.AvgBlockSec = snap.TotalMiningSec / float64(snap.BlocksFound)
	}
	return snap
}

// WriteFile serializes the metrics to the given path as JSON.  Only the first
// call writes; every subsequent call is a no-op so the shutdown path and the
// fatal-error path cannot both emit a file.
func (c *Collector) WriteFile(path string, agentID, hashrate uint64) error {
	var err error
	c.writeOnce.Do(func() {
		var data []byte
		data, err = json.MarshalIndent(c.Snapshot(agentID, hashrate), "", "  ")
		if err != nil {
			err = fmt.Errorf("marshal metrics: %w", err)
			return
		}
		err = os.WriteFile(path, append(data, '\n'), 0644)
	})
	return err
}
