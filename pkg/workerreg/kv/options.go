package kv

import (
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// workerOptions holds configuration for a worker.
type workerOptions struct {
	mailboxSize     int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger
}

// defaultOptions returns the default worker configuration.
// Entries never expire and no janitor goroutine runs.
func defaultOptions() workerOptions {
	return workerOptions{
		mailboxSize:     16,
		defaultTTL:      gocache.NoExpiration,
		cleanupInterval: 0,
	}
}

// Option configures a Worker.
type Option func(*workerOptions)

// WithMailboxSize sets how many requests may queue before callers block.
// Default: 16
func WithMailboxSize(n int) Option {
	return func(o *workerOptions) {
		if n >= 0 {
			o.mailboxSize = n
		}
	}
}

// WithDefaultTTL sets the expiration applied by Put and Update.
// Zero or negative means entries never expire.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *workerOptions) {
		if ttl > 0 {
			o.defaultTTL = ttl
		} else {
			o.defaultTTL = gocache.NoExpiration
		}
	}
}

// WithCleanupInterval sets how often expired entries are purged.
// Zero disables the janitor; expired entries are still hidden from reads.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *workerOptions) {
		if d >= 0 {
			o.cleanupInterval = d
		}
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *workerOptions) {
		o.logger = logger
	}
}
