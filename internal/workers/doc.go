/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

# Overview

When running Go applications in containers (Docker, Kubernetes, etc.), the
number of available CPUs may be limited by cgroup constraints. While Go 1.19+
automatically sets GOMAXPROCS based on container CPU limits, the commonly used
runtime.NumCPU() function still returns the host machine's CPU count.

This package provides helper functions that use GOMAXPROCS to determine
appropriate worker counts for different types of workloads, ensuring the
bridge respects container resource limits.

# The Problem

Consider a Kubernetes pod with a CPU limit of 2 cores running on a 64-core node:

	// Wrong: Returns 64 (host CPUs), ignores container limit
	workers := runtime.NumCPU()

	// Correct: Returns 2 (respects container limit in Go 1.19+)
	workers := runtime.GOMAXPROCS(0)

Spawning 64 workers when you only have 2 CPUs available leads to:
  - Excessive context switching overhead
  - CPU throttling by the container runtime
  - Poor performance and increased latency
  - Potential memory pressure from goroutine stacks

# Basic Usage

The package provides task-specific helper functions:

	import "rtsp-bridge/internal/workers"

	// For CPU-intensive tasks (image decoding, JPEG encoding)
	// Uses 1 worker per available CPU
	numWorkers := workers.ForCPU(8) // max 8 workers

	// For I/O-bound tasks (file operations, network calls)
	// Uses 2 workers per available CPU
	numWorkers := workers.ForIO(16) // max 16 workers

	// For mixed workloads
	// Uses 1.5 workers per available CPU
	numWorkers := workers.ForMixed(12) // max 12 workers

Snapshot capture is the main consumer here: each capture runs an FFmpeg
child process (I/O wait) and then decodes and re-encodes the frame
(CPU), so the snapshot service sizes its semaphore with ForMixed.

# Environment Variable Override

All functions respect the SNAPSHOT_WORKERS environment variable, allowing
operators to override the automatic calculation:

	# In Kubernetes deployment
	env:
	- name: SNAPSHOT_WORKERS
	  value: "4"

This is useful for fine-tuning performance in specific environments,
debugging resource issues, or temporarily limiting concurrency.

# Thread Safety

All functions in this package are safe for concurrent use. They read from
runtime.GOMAXPROCS and environment variables, which are themselves thread-safe.
*/
package workers
