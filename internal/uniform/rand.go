// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package uniform provides deterministic uniform pseudo-random draws for the
// mining simulation.
//
// Unlike a CSPRNG, the whole point of this source is reproducibility: for a
// fixed (global seed, agent id) pair and a fixed order of calls, the sequence
// of draws is bit-identical across runs and machines.  All draws are
// serialized through a single mutex, so the call order alone determines the
// output sequence regardless of which goroutine performs each draw.
package uniform

import (
	"math/rand"
	"sync"
)

// Source is a deterministic uniform random source exclusively owned by a
// single agent process.
//
// All methods are safe for concurrent access.
type Source struct {
	mtx sync.Mutex
	rng *rand.Rand
}

// NewSource returns a deterministic uniform source seeded with the sum of the
// simulation-wide seed and the agent identity, so every agent in a run draws
// a distinct but reproducible sequence.
func NewSource(globalSeed int64, agentID uint64) *Source {
	derivedSeed := globalSeed + int64(agentID)
	return &Source{rng: rand.New(rand.NewSource(derivedSeed))}
}

// Float64 returns the next draw as a float64 in [0,1).
func (s *Source) Float64() float64 {
	s.mtx.Lock()
	v := s.rng.Float64()
	s.mtx.Unlock()
	return v
}

// Uint32 returns the next draw as a uniform uint32.  It is used for nonce
// selection where the full 32-bit range is wanted.
func (s *Source) Uint32() uint32 {
	s.mtx.Lock()
	v := s.rng.Uint32()
	s.mtx.Unlock()
	return v
}
