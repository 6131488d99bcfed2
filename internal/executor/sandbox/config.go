package sandbox

import (
	"time"
)

// Config holds the configuration for in-process sandbox execution.
type Config struct {
	// Timeout is the execution budget of one instance, covering script
	// loading and sampling. Zero disables the budget.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed instances to maintain.
	PoolSize int
	// ScriptName is the file name reported in stack frames of user code.
	ScriptName string
}

// DefaultConfig provides sensible defaults for the embedded sandbox.
func DefaultConfig() Config {
	return Config{
		Timeout:    2 * time.Second,
		PoolSize:   4,
		ScriptName: "easing.js",
	}
}
