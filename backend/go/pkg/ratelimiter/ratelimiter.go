package ratelimiter

import "DocRAG/backend/go/internal/config"

// RateLimiter is the interface for rate limiting.
// Allow returns true if a request is allowed, and false otherwise.
type RateLimiter interface {
	Allow() bool
}

// FromConfig returns the limiter described by cfg, or nil when limiting is disabled.
func FromConfig(cfg config.RateLimiterConfig) RateLimiter {
	if !cfg.Enabled {
		return nil
	}
	return NewTokenBucket(cfg.Rate, cfg.Capacity)
}
