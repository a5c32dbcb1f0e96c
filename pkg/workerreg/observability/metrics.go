package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCreate records a create call as seen by its caller, including
	// time spent queued behind other requests.
	RecordCreate(ctx context.Context, identity string, duration time.Duration, err error)

	// RecordSpawn records a spawn attempt made by the coordinator. A
	// successful spawn adds one registered worker.
	RecordSpawn(ctx context.Context, identity string, err error)

	// RecordEviction records a name removed after its worker exited.
	RecordEviction(ctx context.Context, identity string, abnormal bool)

	// RecordRelease records names forgotten when a registry stops.
	RecordRelease(ctx context.Context, identity string, names int)

	// RecordDropped records a coordinator message that was discarded.
	RecordDropped(ctx context.Context, identity, kind string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	createRequests metric.Int64Counter
	createLatency  metric.Float64Histogram
	spawns         metric.Int64Counter
	spawnErrors    metric.Int64Counter
	evictions      metric.Int64Counter
	dropped        metric.Int64Counter
	liveWorkers    metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("workerreg")

	createRequests, err := meter.Int64Counter("workerreg.create.requests",
		metric.WithDescription("Number of create calls"),
	)
	if err != nil {
		return nil, err
	}

	createLatency, err := meter.Float64Histogram("workerreg.create.latency_ms",
		metric.WithDescription("Create latency in milliseconds, including coordinator queueing"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	spawns, err := meter.Int64Counter("workerreg.spawns",
		metric.WithDescription("Number of workers spawned"),
	)
	if err != nil {
		return nil, err
	}

	spawnErrors, err := meter.Int64Counter("workerreg.spawn.errors",
		metric.WithDescription("Number of failed worker spawns"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter("workerreg.evictions",
		metric.WithDescription("Number of names removed after worker exit"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("workerreg.dropped",
		metric.WithDescription("Number of coordinator messages dropped"),
	)
	if err != nil {
		return nil, err
	}

	liveWorkers, err := meter.Int64UpDownCounter("workerreg.workers.live",
		metric.WithDescription("Number of registered workers"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		createRequests: createRequests,
		createLatency:  createLatency,
		spawns:         spawns,
		spawnErrors:    spawnErrors,
		evictions:      evictions,
		dropped:        dropped,
		liveWorkers:    liveWorkers,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before the first call:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCreate records a create call.
func (m *otelMetrics) RecordCreate(ctx context.Context, identity string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("registry", identity),
		attribute.Bool("success", err == nil),
	)
	m.createRequests.Add(ctx, 1, attrs)
	m.createLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordSpawn records a spawn attempt.
func (m *otelMetrics) RecordSpawn(ctx context.Context, identity string, err error) {
	reg := metric.WithAttributes(attribute.String("registry", identity))
	if err != nil {
		m.spawnErrors.Add(ctx, 1, reg)
		return
	}
	m.spawns.Add(ctx, 1, reg)
	m.liveWorkers.Add(ctx, 1, reg)
}

// RecordEviction records an eviction.
func (m *otelMetrics) RecordEviction(ctx context.Context, identity string, abnormal bool) {
	m.evictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", identity),
		attribute.Bool("abnormal", abnormal),
	))
	m.liveWorkers.Add(ctx, -1, metric.WithAttributes(attribute.String("registry", identity)))
}

// RecordRelease records names dropped on Stop.
func (m *otelMetrics) RecordRelease(ctx context.Context, identity string, names int) {
	if names == 0 {
		return
	}
	m.liveWorkers.Add(ctx, -int64(names), metric.WithAttributes(attribute.String("registry", identity)))
}

// RecordDropped records a dropped message.
func (m *otelMetrics) RecordDropped(ctx context.Context, identity, kind string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", identity),
		attribute.String("kind", kind),
	))
}
