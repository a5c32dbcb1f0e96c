package config

import "time"

// Settings is the typed configuration of a registry and its workers.
type Settings struct {
	Registry   RegistrySettings
	Supervisor SupervisorSettings
	Worker     WorkerSettings
}

// RegistrySettings configures the coordinator.
type RegistrySettings struct {
	// MailboxSize is the coordinator's queue length.
	MailboxSize int
	// Metrics enables OpenTelemetry metrics.
	Metrics bool
	// Tracing enables OpenTelemetry tracing.
	Tracing bool
	// Journal selects the lifecycle journal: "" (none), "memory", or a SQLite path.
	Journal string
}

// SupervisorSettings configures worker spawning.
type SupervisorSettings struct {
	// MaxWorkers caps live workers; 0 is unlimited.
	MaxWorkers int
	// ShutdownTimeout bounds how long a registry waits for its workers on Stop.
	ShutdownTimeout time.Duration
}

// WorkerSettings configures each spawned worker.
type WorkerSettings struct {
	MailboxSize     int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		Registry: RegistrySettings{
			MailboxSize: 64,
		},
		Supervisor: SupervisorSettings{
			ShutdownTimeout: 5 * time.Second,
		},
		Worker: WorkerSettings{
			MailboxSize: 16,
		},
	}
}

// Decode reads Settings from a Config, filling gaps from DefaultSettings.
// Negative sizes and limits fall back to their defaults.
func Decode(cfg Config) Settings {
	s := DefaultSettings()

	reg := cfg.Section("registry")
	s.Registry.MailboxSize = nonNegative(reg.Int("mailbox_size", s.Registry.MailboxSize), s.Registry.MailboxSize)
	s.Registry.Metrics = reg.Bool("metrics", s.Registry.Metrics)
	s.Registry.Tracing = reg.Bool("tracing", s.Registry.Tracing)
	s.Registry.Journal = reg.String("journal", s.Registry.Journal)

	sup := cfg.Section("supervisor")
	s.Supervisor.MaxWorkers = nonNegative(sup.Int("max_workers", s.Supervisor.MaxWorkers), s.Supervisor.MaxWorkers)
	s.Supervisor.ShutdownTimeout = sup.Duration("shutdown_timeout", s.Supervisor.ShutdownTimeout)

	w := cfg.Section("worker")
	s.Worker.MailboxSize = nonNegative(w.Int("mailbox_size", s.Worker.MailboxSize), s.Worker.MailboxSize)
	s.Worker.DefaultTTL = w.Duration("default_ttl", s.Worker.DefaultTTL)
	s.Worker.CleanupInterval = w.Duration("cleanup_interval", s.Worker.CleanupInterval)

	return s
}

func nonNegative(v, fallback int) int {
	if v < 0 {
		return fallback
	}
	return v
}
