package supervisor

import (
	"log/slog"

	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
)

// config holds supervisor configuration.
type config struct {
	maxWorkers int
	workerOpts []kv.Option
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{}
}

// Option configures a Supervisor.
type Option func(*config)

// WithMaxWorkers caps the number of live children.
// Default: 0 (unlimited)
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxWorkers = n
		}
	}
}

// WithWorkerOptions sets the options passed to every spawned worker.
func WithWorkerOptions(opts ...kv.Option) Option {
	return func(c *config) {
		c.workerOpts = append(c.workerOpts, opts...)
	}
}

// WithLogger sets the logger for spawn messages. It is also handed to
// spawned workers unless WithWorkerOptions overrides it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
		c.workerOpts = append([]kv.Option{kv.WithLogger(logger)}, c.workerOpts...)
	}
}
