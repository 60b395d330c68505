// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simminer

import (
	"math"
	"sort"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fountain5405/monerosim-sub005/internal/uniform"
)

// drawSamples returns n discovery-time samples for the given rate using a
// deterministic source.
func drawSamples(n int, lambda float64, seed int64, agentID uint64) []float64 {
	src := uniform.NewSource(seed, agentID)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = sampleWait(src.Float64(), lambda)
	}
	return samples
}

// TestSampleDeterminism ensures the discovery-time sequence is bit-identical
// across independent runs with the same configuration.
func TestSampleDeterminism(t *testing.T) {
	first := drawSamples(1000, 0.01, 42, 1)
	second := drawSamples(1000, 0.01, 42, 1)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d mismatch -- got %v, want %v", i, second[i],
				first[i])
		}
	}
}

// TestExponentialFidelity checks 10,000 discovery-time samples against the
// Exponential(lambda) distribution with a one-sample Kolmogorov-Smirnov test
// at 95% confidence.
func TestExponentialFidelity(t *testing.T) {
	const n = 10000
	const lambda = 0.01

	samples := drawSamples(n, lambda, 42, 1)
	sort.Float64s(samples)

	// Critical value for the KS statistic at alpha = 0.05.
	critical := 1.36 / math.Sqrt(float64(n))

	dist := distuv.Exponential{Rate: lambda}
	var ks float64
	for i, x := range samples {
		f := dist.CDF(x)
		lower := f - float64(i)/n
		upper := float64(i+1)/n - f
		ks = math.Max(ks, math.Max(lower, upper))
	}
	if ks > critical {
		t.Fatalf("KS statistic %v exceeds critical value %v", ks, critical)
	}
}

// TestScenarioMeanDiscoveryTime covers the reference scenario: hashrate
// 10,000,000 against difficulty 1,000,000,000 gives lambda = 0.01, so the
// mean of 1,000 sampled discovery times must land within 10% of 100 time
// units.
func TestScenarioMeanDiscoveryTime(t *testing.T) {
	const hashrate = 10000000
	const diff = 1000000000
	lambda := float64(hashrate) / float64(diff)

	samples := drawSamples(1000, lambda, 42, 1)
	mean := stat.Mean(samples, nil)
	if mean < 90 || mean > 110 {
		t.Fatalf("mean discovery time %v outside [90, 110]", mean)
	}
}

// TestWaitDurationBounds ensures sampled waits convert to sane durations.
func TestWaitDurationBounds(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    time.Duration
	}{
		{name: "zero", seconds: 0, want: 0},
		{name: "one second", seconds: 1, want: time.Second},
		{name: "sub-millisecond", seconds: 0.0005, want: 500 * time.Microsecond},
		{name: "overflowing", seconds: 1e30, want: maxWait},
		{name: "infinite", seconds: math.Inf(1), want: maxWait},
	}

	for _, test := range tests {
		if got := waitDuration(test.seconds); got != test.want {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}
