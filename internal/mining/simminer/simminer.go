// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package simminer provides facilities for simulating block discovery
// (mining) in a concurrency-safe manner.  Instead of hashing, the miner
// models proof-of-work as a Poisson process: each loop iteration samples a
// discovery time from an Exponential(hashrate/difficulty) distribution using
// a deterministic uniform source and performs an interruptible timed wait of
// that duration.
//
// Because the exponential distribution is memoryless, discarding an
// in-flight wait on a difficulty change and resampling against the new rate
// is statistically equivalent to what a real miner would experience, so
// difficulty updates simply interrupt the wait.
package simminer

import (
	"math"
	"sync"
	"time"

	"github.com/Fountain5405/monerosim-sub005/internal/difficulty"
	"github.com/Fountain5405/monerosim-sub005/internal/simmetrics"
	"github.com/Fountain5405/monerosim-sub005/internal/uniform"
)

// maxWait caps a sampled discovery time so the conversion to time.Duration
// cannot overflow.  A wait this long only arises when the difficulty dwarfs
// the agent's hashrate, and an interrupting difficulty update resamples it
// anyway.
const maxWait = 100 * 365 * 24 * time.Hour

// BlockTemplate describes a simulated block discovery.  It carries the
// deterministic nonce, the discovery timestamp, and the difficulty and
// height the block was mined against.
type BlockTemplate struct {
	Nonce      uint32
	Timestamp  time.Time
	Difficulty uint64
	Height     uint64
}

// Config is a descriptor containing the simulated miner configuration.
type Config struct {
	// Hashrate is the agent's fixed simulated hash rate in hashes per
	// second.
	Hashrate uint64

	// Rand is the deterministic uniform source all discovery-time and
	// nonce draws come from.
	Rand *uniform.Source

	// Tracker supplies the network difficulty each iteration mines
	// against.
	Tracker *difficulty.Tracker

	// Metrics receives per-iteration and per-block accounting.
	Metrics *simmetrics.Collector

	// CreateBlock is the host callback invoked with each discovery.  It
	// typically constructs a real block from the template and processes it
	// through the same paths as a block arriving from the network.  It is
	// called with no miner locks held, so the host may re-enter the miner
	// from inside it.
	CreateBlock func(*BlockTemplate) error
}

// Miner simulates block discovery for a single agent.  It runs at most one
// worker goroutine and transitions between exactly two states, stopped and
// running, via the Start and Stop methods.
type Miner struct {
	cfg Config

	// quit and done belong to the current worker generation: closing quit
	// tells the worker to exit and the worker closes done once it has.
	// Stop captures done under the lock so a concurrent Start launching
	// the next generation cannot extend the wait.
	mtx     sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	// interrupt coalesces wait-interruption signals.  It has a one-slot
	// buffer so notification paths never block and back-to-back signals
	// collapse into a single resample against the latest difficulty.
	interrupt chan struct{}
}

// New returns a simulated miner for the provided configuration.  The miner
// starts out stopped; use Start to launch the worker.
func New(cfg *Config) *Miner {
	return &Miner{
		cfg:       *cfg,
		interrupt: make(chan struct{}, 1),
	}
}

// Start launches the mining worker.  Starting an already-running miner is a
// no-op that reports success.  An error is returned when the configuration
// cannot support a worker, in which case the miner remains stopped.
//
// This function is safe for concurrent access.
func (m *Miner) Start() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.running {
		log.Debug("miner already running")
		return nil
	}

	if m.cfg.Hashrate == 0 {
		return makeError(ErrZeroHashrate, "miner requires a positive hashrate")
	}
	if m.cfg.Rand == nil || m.cfg.Tracker == nil || m.cfg.Metrics == nil ||
		m.cfg.CreateBlock == nil {

		return makeError(ErrInvalidConfig, "miner requires a random source, "+
			"difficulty tracker, metrics collector, and block callback")
	}

	// A previous generation may still be draining after a Stop released
	// its lock.  Wait for it so at most one worker is ever live.
	if m.done != nil {
		<-m.done
	}

	m.quit = make(chan struct{})
	m.done = make(chan struct{})
	go m.worker(m.quit, m.done)
	m.running = true
	log.Debugf("mining worker started (hashrate %d)", m.cfg.Hashrate)
	return nil
}

// Stop halts the mining worker and blocks until it has fully exited, so the
// caller observes no live worker once it returns.  Stopping an
// already-stopped miner is a safe no-op.
//
// This function is safe for concurrent access.
func (m *Miner) Stop() {
	m.mtx.Lock()
	if !m.running {
		m.mtx.Unlock()
		return
	}
	m.running = false
	close(m.quit)
	done := m.done
	m.mtx.Unlock()

	<-done
	log.Debug("mining worker stopped")
}

// IsRunning returns whether the mining worker is currently active.
//
// This function is safe for concurrent access.
func (m *Miner) IsRunning() bool {
	m.mtx.Lock()
	running := m.running
	m.mtx.Unlock()
	return running
}

// Interrupt signals the worker to abandon any in-flight wait and resample
// against the current difficulty.  It never blocks; signals delivered while
// one is already pending coalesce.
func (m *Miner) Interrupt() {
	select {
	case m.interrupt <- struct{}{}:
	default:
	}
}

// sampleWait returns the inverse-CDF sample of an Exponential(lambda)
// distribution for the uniform draw u in [0,1).
func sampleWait(u, lambda float64) float64 {
	return -math.Log(1-u) / lambda
}

// waitDuration converts a sampled discovery time in seconds to a bounded
// time.Duration.
func waitDuration(seconds float64) time.Duration {
	d := time.Duration(seconds * float64(time.Second))
	if d < 0 || d > maxWait {
		return maxWait
	}
	return d
}

// waitOutcome describes how an interruptible timed wait ended.
type waitOutcome int

const (
	// waitTimeout indicates the wait ran its full duration, which means
	// the agent discovered a block.
	waitTimeout waitOutcome = iota

	// waitInterrupted indicates a notification abandoned the wait before
	// its timeout fired.
	waitInterrupted

	// waitQuit indicates the worker was told to shut down.
	waitQuit
)

// interruptibleWait blocks for the given duration unless an interrupt signal
// or worker shutdown cuts it short.
//
// Tie-break: when an interrupt arrives and the wait duration has already
// elapsed, the timeout wins -- the wait reports waitTimeout and the losing
// interrupt is consumed on both paths so it cannot force a spurious
// resample of the next sample.  The next iteration snapshots the tracker
// directly, so a consumed interrupt loses no information.
func (m *Miner) interruptibleWait(d time.Duration, quit chan struct{}) waitOutcome {
	start := time.Now()
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
		// Drop an interrupt that lost the tie.
		select {
		case <-m.interrupt:
		default:
		}
		return waitTimeout

	case <-m.interrupt:
		if !timer.Stop() {
			<-timer.C
			return waitTimeout
		}
		// The runtime can deliver a ready interrupt ahead of a timer that
		// is already due.  An elapsed wait is a discovery no matter which
		// channel the select observed.
		if time.Since(start) >= d {
			return waitTimeout
		}
		return waitInterrupted

	case <-quit:
		timer.Stop()
		return waitQuit
	}
}

// worker repeatedly samples a discovery time against the current difficulty
// and performs an interruptible timed wait.  A wait that runs to completion
// is a block discovery; an interrupted wait is discarded and resampled; the
// quit channel closing ends the worker.
//
// It must be run as a goroutine and closes done on exit.
func (m *Miner) worker(quit, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			return
		default:
		}

		diff, height := m.cfg.Tracker.Snapshot()
		if diff == 0 {
			// No difficulty known yet.  Park until a notification arrives
			// rather than sampling a meaningless rate.
			log.Debug("difficulty unknown, parking worker")
			select {
			case <-m.interrupt:
				continue
			case <-quit:
				return
			}
		}

		lambda := float64(m.cfg.Hashrate) / float64(diff)
		u := m.cfg.Rand.Float64()
		wait := sampleWait(u, lambda)
		m.cfg.Metrics.AddIteration()
		log.Tracef("sampled discovery time %.6fs (difficulty %d, height %d)",
			wait, diff, height)

		switch m.interruptibleWait(waitDuration(wait), quit) {
		case waitTimeout:
			m.discoverBlock(diff, height, wait)
		case waitInterrupted:
			log.Tracef("wait interrupted, resampling")
		case waitQuit:
			return
		}
	}
}

// discoverBlock invokes the host block-creation callback for a completed
// wait and records the discovery.  Errors from the host are counted and
// swallowed so a failed attempt never disturbs the loop.
//
// No miner locks are held across the callback.
func (m *Miner) discoverBlock(diff, height uint64, waited float64) {
	tmpl := &BlockTemplate{
		Nonce:      m.cfg.Rand.Uint32(),
		Timestamp:  time.Now(),
		Difficulty: diff,
		Height:     height + 1,
	}
	if err := m.cfg.CreateBlock(tmpl); err != nil {
		m.cfg.Metrics.AddError()
		log.Warnf("block construction failed at height %d: %v", tmpl.Height, err)
		return
	}

	m.cfg.Metrics.AddBlockFound(waitDuration(waited))
	log.Infof("block discovered: height %d, nonce %08x, difficulty %d, "+
		"mined for %.3fs", tmpl.Height, tmpl.Nonce, diff, waited)
}
