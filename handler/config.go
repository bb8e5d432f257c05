package handler

import "time"

// ResolverConfig contains configuration parameters for piece resolution,
// including retry behavior and search concurrency.
type ResolverConfig struct {
	MaxRetries       int
	ConcurrencyCount int
	BackoffDuration  time.Duration
}
