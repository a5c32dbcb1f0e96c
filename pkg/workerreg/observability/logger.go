// Package observability provides structured logging, metrics and tracing
// for workerreg.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds registry context to a logger.
//
// Example:
//
//	logger := EnrichLogger(slog.Default(), "carts")
//	logger.Info("ready") // includes registry=carts
func EnrichLogger(logger *slog.Logger, identity string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("registry", identity))
}

// LogRegistryStart logs that a registry's coordinator is running.
func LogRegistryStart(logger *slog.Logger, mailboxSize int) {
	if logger == nil {
		return
	}
	logger.Info("registry started",
		slog.Int("mailbox_size", mailboxSize),
	)
}

// LogRegistryStop logs coordinator shutdown.
func LogRegistryStop(logger *slog.Logger, names int) {
	if logger == nil {
		return
	}
	logger.Info("registry stopped",
		slog.Int("names", names),
	)
}

// LogSpawn logs a worker created for a name.
func LogSpawn(logger *slog.Logger, name, workerID string, token string) {
	if logger == nil {
		return
	}
	logger.Debug("worker registered",
		slog.String("name", name),
		slog.String("worker_id", workerID),
		slog.String("token", token),
	)
}

// LogSpawnError logs a failed create.
func LogSpawnError(logger *slog.Logger, name string, err error) {
	if logger == nil {
		return
	}
	logger.Error("worker spawn failed",
		slog.String("name", name),
		slog.String("error", err.Error()),
	)
}

// LogEvict logs removal of a name after its worker exited.
func LogEvict(logger *slog.Logger, name, workerID, reason string) {
	if logger == nil {
		return
	}
	logger.Info("worker evicted",
		slog.String("name", name),
		slog.String("worker_id", workerID),
		slog.String("reason", reason),
	)
}

// LogUnknownToken logs a Down notification with no registered name.
// The notification is dropped.
func LogUnknownToken(logger *slog.Logger, token, workerID string) {
	if logger == nil {
		return
	}
	logger.Error("down notification for unknown monitor token",
		slog.String("token", token),
		slog.String("worker_id", workerID),
	)
}

// LogUnknownMessage logs a mailbox message the coordinator does not handle.
func LogUnknownMessage(logger *slog.Logger, msg any) {
	if logger == nil {
		return
	}
	logger.Warn("unexpected coordinator message",
		slog.Any("message", msg),
	)
}

// LogCoordinatorPanic logs a recovered panic while handling a message.
func LogCoordinatorPanic(logger *slog.Logger, value any, stack string) {
	if logger == nil {
		return
	}
	logger.Error("coordinator recovered from panic",
		slog.Any("panic", value),
		slog.String("stack", stack),
	)
}

// LogJournalError logs a journal failure (non-fatal).
func LogJournalError(logger *slog.Logger, name, event string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String("name", name),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
