// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simminer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Fountain5405/monerosim-sub005/internal/difficulty"
	"github.com/Fountain5405/monerosim-sub005/internal/simmetrics"
	"github.com/Fountain5405/monerosim-sub005/internal/uniform"
)

// blockRecorder is a CreateBlock callback that records every template it
// receives.
type blockRecorder struct {
	mtx    sync.Mutex
	blocks []BlockTemplate
	err    error
}

func (r *blockRecorder) createBlock(tmpl *BlockTemplate) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.err != nil {
		return r.err
	}
	r.blocks = append(r.blocks, *tmpl)
	return nil
}

func (r *blockRecorder) snapshot() []BlockTemplate {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]BlockTemplate(nil), r.blocks...)
}

// newTestMiner returns a miner wired to fresh collaborators along with the
// tracker, metrics collector, and block recorder backing it.
func newTestMiner(t *testing.T, hashrate, diff uint64, seed int64) (*Miner,
	*difficulty.Tracker, *simmetrics.Collector, *blockRecorder) {

	t.Helper()

	tracker := difficulty.NewTracker(diff)
	metrics := simmetrics.NewCollector()
	recorder := &blockRecorder{}
	m := New(&Config{
		Hashrate:    hashrate,
		Rand:        uniform.NewSource(seed, 1),
		Tracker:     tracker,
		Metrics:     metrics,
		CreateBlock: recorder.createBlock,
	})
	t.Cleanup(m.Stop)
	return m, tracker, metrics, recorder
}

// waitFor polls until the condition holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestStartStopIdempotence ensures start-when-running and stop-when-stopped
// are safe no-ops and that stop leaves no live worker behind.
func TestStartStopIdempotence(t *testing.T) {
	// Difficulty far beyond the hashrate so no timeout can fire during
	// the test.
	m, _, metrics, _ := newTestMiner(t, 1, 1e18, 42)

	if m.IsRunning() {
		t.Fatal("miner reports running before start")
	}
	m.Stop() // stop-when-stopped is a no-op
	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("start-when-running must succeed, got: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("miner not running after start")
	}

	m.Stop()
	if m.IsRunning() {
		t.Fatal("miner reports running after stop")
	}
	m.Stop() // idempotent

	if got := metrics.Snapshot(1, 1).BlocksFound; got != 0 {
		t.Errorf("blocks found -- got %d, want 0", got)
	}
}

// TestStopUnblocksDespiteConcurrentStart ensures a stop that races with a
// start waits only for the worker generation it observed, and that at most
// one worker is ever live across the transition.
func TestStopUnblocksDespiteConcurrentStart(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	tracker := difficulty.NewTracker(1)
	metrics := simmetrics.NewCollector()
	m := New(&Config{
		Hashrate: 1000000,
		Rand:     uniform.NewSource(42, 1),
		Tracker:  tracker,
		Metrics:  metrics,
		CreateBlock: func(*BlockTemplate) error {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			return nil
		},
	})
	t.Cleanup(m.Stop)

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	<-entered // worker is parked inside the block callback

	stopReturned := make(chan struct{})
	startReturned := make(chan struct{})
	go func() {
		m.Stop()
		close(stopReturned)
	}()
	go func() {
		if err := m.Start(); err != nil {
			t.Errorf("unexpected start error: %v", err)
		}
		close(startReturned)
	}()

	// Stop cannot finish while the worker it observed is still parked.
	select {
	case <-stopReturned:
		t.Fatal("stop returned while its worker was still live")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopReturned:
	case <-time.After(10 * time.Second):
		t.Fatal("stop did not return after its worker exited")
	}
	select {
	case <-startReturned:
	case <-time.After(10 * time.Second):
		t.Fatal("start did not return after the previous worker exited")
	}

	m.Stop()
	if m.IsRunning() {
		t.Fatal("miner reports running after final stop")
	}
}

// TestStartInvalidConfig ensures a miner that cannot support a worker
// reports failure and stays stopped.
func TestStartInvalidConfig(t *testing.T) {
	tracker := difficulty.NewTracker(1000)
	metrics := simmetrics.NewCollector()
	rnd := uniform.NewSource(1, 1)
	noop := func(*BlockTemplate) error { return nil }

	tests := []struct {
		name     string
		cfg      Config
		wantKind ErrorKind
	}{
		{
			name:     "zero hashrate",
			cfg:      Config{Rand: rnd, Tracker: tracker, Metrics: metrics, CreateBlock: noop},
			wantKind: ErrZeroHashrate,
		},
		{
			name:     "missing random source",
			cfg:      Config{Hashrate: 1, Tracker: tracker, Metrics: metrics, CreateBlock: noop},
			wantKind: ErrInvalidConfig,
		},
		{
			name:     "missing block callback",
			cfg:      Config{Hashrate: 1, Rand: rnd, Tracker: tracker, Metrics: metrics},
			wantKind: ErrInvalidConfig,
		},
	}

	for _, test := range tests {
		m := New(&test.cfg)
		err := m.Start()
		if !errors.Is(err, test.wantKind) {
			t.Errorf("%s: unexpected error -- got %v, want kind %v", test.name,
				err, test.wantKind)
		}
		if m.IsRunning() {
			t.Errorf("%s: miner running after failed start", test.name)
		}
	}
}

// TestDeterministicDiscoveries ensures two miners with identical seeds,
// hashrates, and difficulty sequences produce bit-identical block sequences.
func TestDeterministicDiscoveries(t *testing.T) {
	const wantBlocks = 20

	run := func() []BlockTemplate {
		// Mean discovery time of 1ms so the test completes quickly.
		m, _, _, recorder := newTestMiner(t, 1000000, 1000, 42)
		if err := m.Start(); err != nil {
			t.Fatalf("unexpected start error: %v", err)
		}
		waitFor(t, "block discoveries", func() bool {
			return len(recorder.snapshot()) >= wantBlocks
		})
		m.Stop()
		return recorder.snapshot()[:wantBlocks]
	}

	first := run()
	second := run()
	for i := range first {
		if first[i].Nonce != second[i].Nonce {
			t.Fatalf("nonce %d mismatch -- got %08x, want %08x", i,
				second[i].Nonce, first[i].Nonce)
		}
		if first[i].Height != second[i].Height {
			t.Fatalf("height %d mismatch -- got %d, want %d", i,
				second[i].Height, first[i].Height)
		}
		if first[i].Difficulty != second[i].Difficulty {
			t.Fatalf("difficulty %d mismatch -- got %d, want %d", i,
				second[i].Difficulty, first[i].Difficulty)
		}
	}
}

// TestInterruptResamples delivers difficulty updates faster than any timeout
// could fire and ensures each one causes exactly one resample cycle, no
// blocks, and a tracker left at the final update's value.
func TestInterruptResamples(t *testing.T) {
	const baseDiff = uint64(1e18)
	m, tracker, metrics, recorder := newTestMiner(t, 1, baseDiff, 42)

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	waitFor(t, "first sample", func() bool {
		return metrics.Snapshot(1, 1).Iterations == 1
	})

	// Deliver five updates, each only after the worker has consumed the
	// previous one, mirroring notification delivery in the simulator where
	// the wait is interrupted before another notification can arrive.
	var lastDiff uint64
	for i := uint64(1); i <= 5; i++ {
		lastDiff = baseDiff + i
		tracker.Update(lastDiff, i)
		m.Interrupt()
		want := 1 + i
		waitFor(t, "resample cycle", func() bool {
			return metrics.Snapshot(1, 1).Iterations == want
		})
	}

	m.Stop()

	if got := len(recorder.snapshot()); got != 0 {
		t.Errorf("blocks found during resamples -- got %d, want 0", got)
	}
	gotDiff, gotHeight := tracker.Snapshot()
	if gotDiff != lastDiff || gotHeight != 5 {
		t.Errorf("tracker -- got (%d, %d), want (%d, 5)", gotDiff, gotHeight,
			lastDiff)
	}
	snap := metrics.Snapshot(1, 1)
	if snap.Iterations != 6 {
		t.Errorf("iterations -- got %d, want 6", snap.Iterations)
	}
}

// TestInterruptReflectsNewDifficulty ensures a difficulty update during an
// outstanding wait is reflected in the next sampled rate rather than a stale
// one: dropping the difficulty drastically must let the next sample's
// timeout fire almost immediately.
func TestInterruptReflectsNewDifficulty(t *testing.T) {
	m, tracker, metrics, recorder := newTestMiner(t, 1000000, 1e18, 42)

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	waitFor(t, "first sample", func() bool {
		return metrics.Snapshot(1, 1).Iterations >= 1
	})

	// Mean discovery time drops from ~31,000 years to 1ms.
	tracker.Update(1000, 1)
	m.Interrupt()

	waitFor(t, "block mined against new difficulty", func() bool {
		return len(recorder.snapshot()) >= 1
	})
	m.Stop()

	got := recorder.snapshot()[0]
	if got.Difficulty != 1000 {
		t.Errorf("block difficulty -- got %d, want 1000 (stale sample used)",
			got.Difficulty)
	}
	if got.Height != 2 {
		t.Errorf("block height -- got %d, want 2", got.Height)
	}
}

// TestTimeoutWinsTieBreak ensures that when an interrupt and the wait's
// expiry race, the expiry wins and the losing interrupt is consumed rather
// than carried into the next wait.
func TestTimeoutWinsTieBreak(t *testing.T) {
	m, _, _, _ := newTestMiner(t, 1, 1e18, 42)
	quit := make(chan struct{})

	// A due wait with a pending interrupt reports a discovery regardless
	// of which channel the select observes first.  The zero duration makes
	// the timer due immediately while the runtime may still deliver the
	// interrupt ahead of it.
	m.Interrupt()
	if got := m.interruptibleWait(0, quit); got != waitTimeout {
		t.Fatalf("expired wait with pending interrupt -- got %v, want %v",
			got, waitTimeout)
	}
	select {
	case <-m.interrupt:
		t.Fatal("losing interrupt left pending after an expired wait")
	default:
	}

	// A pending interrupt against a wait that cannot expire is an
	// interruption.
	m.Interrupt()
	if got := m.interruptibleWait(time.Hour, quit); got != waitInterrupted {
		t.Fatalf("pending interrupt -- got %v, want %v", got, waitInterrupted)
	}

	// Worker shutdown cuts the wait short.
	close(quit)
	if got := m.interruptibleWait(time.Hour, quit); got != waitQuit {
		t.Fatalf("closed quit channel -- got %v, want %v", got, waitQuit)
	}
}

// TestParkedUntilDifficultyKnown ensures a worker started against an unknown
// (zero) difficulty draws no samples until the first update arrives.
func TestParkedUntilDifficultyKnown(t *testing.T) {
	m, tracker, metrics, _ := newTestMiner(t, 1000, 0, 42)

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := metrics.Snapshot(1, 1).Iterations; got != 0 {
		t.Fatalf("iterations while parked -- got %d, want 0", got)
	}

	tracker.Update(1e18, 1)
	m.Interrupt()
	waitFor(t, "first sample after update", func() bool {
		return metrics.Snapshot(1, 1).Iterations == 1
	})
}

// TestBlockConstructionErrorsSwallowed ensures host callback failures are
// counted and the loop keeps mining.
func TestBlockConstructionErrorsSwallowed(t *testing.T) {
	m, _, metrics, recorder := newTestMiner(t, 1000000, 1000, 42)
	recorder.err = errors.New("host rejected template")

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	waitFor(t, "errors to accumulate", func() bool {
		return metrics.Snapshot(1, 1).Errors >= 5
	})
	m.Stop()

	snap := metrics.Snapshot(1, 1)
	if snap.BlocksFound != 0 {
		t.Errorf("blocks found despite failing callback -- got %d, want 0",
			snap.BlocksFound)
	}
	if snap.Iterations < snap.Errors {
		t.Errorf("more errors than iterations -- %d iterations, %d errors",
			snap.Iterations, snap.Errors)
	}
}
