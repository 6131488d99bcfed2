package docker

import (
	"time"
)

// Config holds the configuration for Docker execution.
type Config struct {
	// Image is the Docker image to use for execution. It must contain the
	// easing binary at Binary.
	Image string
	// Binary is the path of the easing binary inside the image.
	Binary string
	// Pull makes New pull Image before starting the pool.
	Pull bool
	// MemoryLimit is the maximum amount of memory the container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs the container can use.
	CPULimit float64
	// PidsLimit caps the number of processes inside the container.
	PidsLimit int64
	// Timeout is the maximum amount of time one request may hold a container.
	Timeout time.Duration
	// ScriptTimeout is the execution budget handed to the worker. It should
	// be shorter than Timeout so the worker can report TimedOut itself.
	ScriptTimeout time.Duration
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
}

// DefaultConfig provides sensible defaults for a containerised sandbox.
func DefaultConfig() Config {
	return Config{
		Image:  "ghcr.io/sakif/easing-playground:latest",
		Binary: "/usr/local/bin/easing",
		// 64 MB memory limit
		MemoryLimit: 64 * 1024 * 1024,
		// 0.5 CPU shares
		CPULimit:      0.5,
		PidsLimit:     32,
		Timeout:       5 * time.Second,
		ScriptTimeout: 2 * time.Second,
		PoolSize:      3,
	}
}
