package workerreg

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/workerreg/pkg/workerreg/journal"
	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
	"github.com/randalmurphal/workerreg/pkg/workerreg/observability"
	"github.com/randalmurphal/workerreg/pkg/workerreg/supervisor"
	"github.com/randalmurphal/workerreg/pkg/workerreg/table"
)

// Supervisor spawns workers and reports their termination.
// *supervisor.Supervisor is the standard implementation.
type Supervisor interface {
	// Spawn starts a new worker.
	Spawn(ctx context.Context) (*kv.Worker, error)

	// Monitor arranges for deliver to be called once when w exits.
	Monitor(w *kv.Worker, deliver func(supervisor.Down)) supervisor.Token

	// Demonitor cancels a pending monitor.
	Demonitor(tok supervisor.Token) bool
}

// Compile-time interface check.
var _ Supervisor = (*supervisor.Supervisor)(nil)

// Stats are counts taken by the coordinator between two messages, so the
// two tables are always consistent with each other.
type Stats struct {
	// Names is the number of registered names.
	Names int
	// Watches is the number of pending exit monitors.
	Watches int
}

// Registry maps names to live workers. Lookup reads the name table directly;
// Create and exit notifications are serialized through one coordinator
// goroutine, which is the only writer.
type Registry struct {
	identity string
	names    *table.Table[string, *kv.Worker]

	// watches maps monitor tokens back to names. Owned by the coordinator.
	watches map[supervisor.Token]string

	mailbox  chan any
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// ctx spans the registry's lifetime and is passed to Spawn.
	ctx    context.Context
	cancel context.CancelFunc

	sup             Supervisor
	ownSup          *supervisor.Supervisor
	shutdownTimeout time.Duration

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	journal journal.Store
}

// Start creates a registry under identity and starts its coordinator.
// It fails with *StartError if a running registry already uses identity.
func Start(identity string, opts ...Option) (*Registry, error) {
	if identity == "" {
		return nil, &StartError{Identity: identity, Err: ErrEmptyIdentity}
	}

	cfg := defaultStartConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = observability.EnrichLogger(logger, identity)

	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		identity:        identity,
		names:           table.New[string, *kv.Worker](),
		watches:         make(map[supervisor.Token]string),
		mailbox:         make(chan any, cfg.mailboxSize),
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
		sup:             cfg.sup,
		shutdownTimeout: cfg.shutdownTimeout,
		logger:          logger,
		metrics:         observability.NoopMetrics{},
		spans:           observability.NoopSpanManager{},
		journal:         cfg.journal,
	}

	if _, loaded := directory.LoadOrStore(identity, r); loaded {
		cancel()
		return nil, &StartError{Identity: identity, Err: ErrIdentityInUse}
	}

	if r.sup == nil {
		supOpts := append([]supervisor.Option{supervisor.WithLogger(logger)}, cfg.supOpts...)
		r.ownSup = supervisor.New(supOpts...)
		r.sup = r.ownSup
	}
	if cfg.metrics {
		r.metrics = observability.NewMetricsRecorder()
	}
	if cfg.tracing {
		r.spans = observability.NewSpanManager()
	}

	go r.loop()
	observability.LogRegistryStart(logger, cfg.mailboxSize)
	return r, nil
}

// Identity returns the identity the registry was started under.
func (r *Registry) Identity() string {
	return r.identity
}

// Lookup returns the worker registered under name. It reads the name table
// without involving the coordinator, so it never blocks. A returned worker
// is believed alive; its exit may not have been processed yet.
func (r *Registry) Lookup(name string) (*kv.Worker, bool) {
	return r.names.Get(name)
}

// Create returns the worker registered under name, spawning one if the name
// is absent. Concurrent calls for the same name all return the same worker.
//
// A spawn failure is returned as *CreateError and leaves the registry
// unchanged. If ctx ends first, Create returns ctx.Err(); a request already
// queued is still processed.
func (r *Registry) Create(ctx context.Context, name string) (w *kv.Worker, err error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	ctx, span := r.spans.StartCreateSpan(ctx, r.identity, name)
	defer func() { r.spans.EndSpanWithError(span, err) }()

	elapsed := observability.TimedOperation()
	req := &createRequest{ctx: ctx, name: name, reply: make(chan createReply, 1)}
	if err = r.post(ctx, req); err != nil {
		return nil, err
	}

	rep, err := awaitReply(ctx, r.done, req.reply)
	if err == nil {
		w, err = rep.worker, rep.err
	}
	r.metrics.RecordCreate(ctx, r.identity, elapsed(), err)
	return w, err
}

// Stats returns the coordinator's view of the table sizes.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	req := &statsRequest{reply: make(chan Stats, 1)}
	if err := r.post(ctx, req); err != nil {
		return Stats{}, err
	}
	return awaitReply(ctx, r.done, req.reply)
}

// Stop shuts the coordinator down, cancels all monitors, forgets every name
// and releases the identity. A supervisor created by Start is shut down
// too, stopping its workers; ctx bounds that wait, defaulting to the
// configured shutdown timeout. Stop is idempotent.
func (r *Registry) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		close(r.quit)
		<-r.done

		directory.CompareAndDelete(r.identity, r)
		r.cancel()

		if r.ownSup != nil {
			if _, ok := ctx.Deadline(); !ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, r.shutdownTimeout)
				defer cancel()
			}
			err = r.ownSup.Shutdown(ctx)
		}
	})
	return err
}

// Done returns a channel that is closed once the coordinator has exited.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}

// post queues a message for the coordinator.
func (r *Registry) post(ctx context.Context, msg any) error {
	select {
	case <-r.quit:
		return ErrNotRunning
	default:
	}

	select {
	case r.mailbox <- msg:
		return nil
	case <-r.quit:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliverDown is the monitor callback. It blocks until the coordinator
// accepts the notification or the registry stops.
func (r *Registry) deliverDown(d supervisor.Down) {
	select {
	case r.mailbox <- d:
	case <-r.quit:
	}
}

// awaitReply waits for a coordinator reply. A reply sent just before the
// coordinator exited still wins.
func awaitReply[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrNotRunning
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
