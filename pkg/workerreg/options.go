package workerreg

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/workerreg/pkg/workerreg/config"
	"github.com/randalmurphal/workerreg/pkg/workerreg/journal"
	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
	"github.com/randalmurphal/workerreg/pkg/workerreg/supervisor"
)

// startConfig holds configuration for a registry.
type startConfig struct {
	logger          *slog.Logger
	sup             Supervisor
	supOpts         []supervisor.Option
	mailboxSize     int
	metrics         bool
	tracing         bool
	journal         journal.Store
	shutdownTimeout time.Duration
}

// defaultStartConfig returns the default registry configuration.
func defaultStartConfig() startConfig {
	return startConfig{
		mailboxSize:     64,
		shutdownTimeout: 5 * time.Second,
	}
}

// Option configures a registry at Start.
type Option func(*startConfig)

// WithLogger sets the logger. Default: slog.Default().
// Every record carries registry=<identity>.
func WithLogger(logger *slog.Logger) Option {
	return func(c *startConfig) {
		c.logger = logger
	}
}

// WithSupervisor makes the registry spawn and monitor workers through sup.
// The caller keeps ownership: Stop does not shut sup down.
func WithSupervisor(sup Supervisor) Option {
	return func(c *startConfig) {
		c.sup = sup
	}
}

// WithSupervisorOptions configures the supervisor the registry creates for
// itself. Ignored when WithSupervisor is given.
func WithSupervisorOptions(opts ...supervisor.Option) Option {
	return func(c *startConfig) {
		c.supOpts = append(c.supOpts, opts...)
	}
}

// WithMailboxSize sets how many requests and exit notifications may queue
// for the coordinator. Default: 64
func WithMailboxSize(n int) Option {
	return func(c *startConfig) {
		if n >= 0 {
			c.mailboxSize = n
		}
	}
}

// WithMetrics enables OpenTelemetry metrics. Default: false
func WithMetrics(enabled bool) Option {
	return func(c *startConfig) {
		c.metrics = enabled
	}
}

// WithTracing enables OpenTelemetry spans for Create. Default: false
func WithTracing(enabled bool) Option {
	return func(c *startConfig) {
		c.tracing = enabled
	}
}

// WithJournal records spawns, failed spawns and evictions to store.
// The caller keeps ownership of store.
func WithJournal(store journal.Store) Option {
	return func(c *startConfig) {
		c.journal = store
	}
}

// WithShutdownTimeout bounds how long Stop waits for an owned supervisor.
// Default: 5s
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *startConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// OptionsFromSettings converts loaded settings into Start options.
// The journal is not opened here; see journal.Open.
func OptionsFromSettings(s config.Settings) []Option {
	workerOpts := []kv.Option{
		kv.WithMailboxSize(s.Worker.MailboxSize),
		kv.WithDefaultTTL(s.Worker.DefaultTTL),
		kv.WithCleanupInterval(s.Worker.CleanupInterval),
	}
	return []Option{
		WithMailboxSize(s.Registry.MailboxSize),
		WithMetrics(s.Registry.Metrics),
		WithTracing(s.Registry.Tracing),
		WithShutdownTimeout(s.Supervisor.ShutdownTimeout),
		WithSupervisorOptions(
			supervisor.WithMaxWorkers(s.Supervisor.MaxWorkers),
			supervisor.WithWorkerOptions(workerOpts...),
		),
	}
}
