// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
minersim-agent is a deterministic probabilistic mining agent written in Go.

Instead of hashing, the agent models proof-of-work as a Poisson process:
each mining iteration samples a block discovery time from an exponential
distribution parameterized by its simulated hash rate and the current
network difficulty.  All randomness flows from a single seed, so a run with
the same seed, agent identity, and notification sequence reproduces the same
block discoveries.

Under an orchestrator the agent reads its run parameters from the
environment (MONEROSIM_HASHRATE, MONEROSIM_AGENT_ID, MONEROSIM_GLOBAL_SEED,
and optionally MONEROSIM_LOG_LEVEL, MONEROSIM_LOG_FILE, and
MONEROSIM_METRICS_FILE) and only
activates when spawned inside the virtual-time simulator.  Standalone, the
flags below seed that same environment and a built-in loopback host drives
the engine so the full attach path can be exercised from a shell.

Usage:

	minersim-agent [OPTIONS]

Application Options:

	-H, --hashrate=    Simulated hash rate in hashes per second
	-a, --agentid=     Agent identity unique to this simulation run
	-s, --seed=        Simulation-wide reproducibility seed
	-d, --loglevel=    Logging level {trace, debug, info, warn, error}
	    --logfile=     Per-agent log file path
	    --metricsfile= Per-agent metrics file path
	    --difficulty=  Starting network difficulty for the loopback host
	-V, --version      Display version information and exit

Help Options:

	-h, --help         Show this help message
*/
package main
