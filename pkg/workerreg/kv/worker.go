// Package kv provides an in-memory key/value worker.
//
// Each Worker owns its state and processes requests one at a time on its own
// goroutine. Different workers are fully independent. A worker terminates
// when it is stopped, killed, or when a request handler panics; callers can
// wait on Done and read the termination reason from Err.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Sentinel errors for worker calls.
var (
	// ErrWorkerDown indicates the worker terminated before answering.
	ErrWorkerDown = errors.New("worker is down")

	// ErrEmptyKey indicates a call was made with an empty key.
	ErrEmptyKey = errors.New("key cannot be empty")
)

// PanicError is the termination reason of a worker whose handler panicked.
type PanicError struct {
	// WorkerID is the worker that panicked.
	WorkerID string
	// Op is the request being handled.
	Op string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %s panicked during %s: %v", e.WorkerID, e.Op, e.Value)
}

type opKind int

const (
	opGet opKind = iota
	opPut
	opDelete
	opLen
	opUpdate
)

func (o opKind) String() string {
	switch o {
	case opGet:
		return "get"
	case opPut:
		return "put"
	case opDelete:
		return "delete"
	case opLen:
		return "len"
	case opUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type request struct {
	op    opKind
	key   string
	value any
	ttl   time.Duration
	fn    UpdateFunc
	reply chan result
}

type result struct {
	value any
	found bool
	n     int
	err   error
}

// Worker is a unit of mutable key/value state served by a single goroutine.
// A *Worker is the handle callers keep; two handles are the same worker iff
// the pointers are equal.
type Worker struct {
	id       string
	cache    *gocache.Cache
	requests chan request
	quit     chan error
	done     chan struct{}
	logger   *slog.Logger

	exitOnce sync.Once
	mu       sync.Mutex
	reason   error
}

// New starts a worker and returns its handle.
func New(opts ...Option) *Worker {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Worker{
		id:       uuid.New().String(),
		cache:    gocache.New(cfg.defaultTTL, cfg.cleanupInterval),
		requests: make(chan request, cfg.mailboxSize),
		quit:     make(chan error, 1),
		done:     make(chan struct{}),
		logger:   cfg.logger,
	}
	go w.run()
	return w
}

// ID returns the worker's unique identifier.
func (w *Worker) ID() string {
	return w.id
}

// Done returns a channel that is closed when the worker has terminated.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Alive reports whether the worker is still running.
func (w *Worker) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Err returns the termination reason once Done is closed.
// A nil reason means the worker was stopped normally.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reason
}

// Stop terminates the worker normally. Requests already queued are dropped.
func (w *Worker) Stop() {
	w.terminate(nil)
}

// Kill terminates the worker abnormally with the given reason.
func (w *Worker) Kill(reason error) {
	if reason == nil {
		reason = errors.New("killed")
	}
	w.terminate(reason)
}

func (w *Worker) terminate(reason error) {
	w.exitOnce.Do(func() {
		w.quit <- reason
	})
}

// Get returns the value stored under key.
func (w *Worker) Get(ctx context.Context, key string) (any, bool, error) {
	res, err := w.call(ctx, request{op: opGet, key: key})
	if err != nil {
		return nil, false, err
	}
	return res.value, res.found, nil
}

// Put stores value under key using the worker's default expiration.
func (w *Worker) Put(ctx context.Context, key string, value any) error {
	_, err := w.call(ctx, request{op: opPut, key: key, value: value, ttl: gocache.DefaultExpiration})
	return err
}

// PutTTL stores value under key and expires it after ttl.
func (w *Worker) PutTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err := w.call(ctx, request{op: opPut, key: key, value: value, ttl: ttl})
	return err
}

// Delete removes key and returns the value it held, if any.
func (w *Worker) Delete(ctx context.Context, key string) (any, bool, error) {
	res, err := w.call(ctx, request{op: opDelete, key: key})
	if err != nil {
		return nil, false, err
	}
	return res.value, res.found, nil
}

// UpdateFunc computes the next value for a key from its current value.
// Returning keep=false removes the key.
type UpdateFunc func(old any, found bool) (next any, keep bool)

// Update applies fn to the value under key inside the worker, so no other
// request can interleave. It returns the stored result. A panic in fn
// terminates the worker with a *PanicError.
func (w *Worker) Update(ctx context.Context, key string, fn UpdateFunc) (any, bool, error) {
	if fn == nil {
		return nil, false, errors.New("update function is required")
	}
	res, err := w.call(ctx, request{op: opUpdate, key: key, fn: fn})
	if err != nil {
		return nil, false, err
	}
	return res.value, res.found, nil
}

// Len returns the number of unexpired entries.
func (w *Worker) Len(ctx context.Context) (int, error) {
	res, err := w.call(ctx, request{op: opLen})
	if err != nil {
		return 0, err
	}
	return res.n, nil
}

// call hands a request to the worker goroutine and waits for the reply.
func (w *Worker) call(ctx context.Context, req request) (result, error) {
	if req.op != opLen && req.key == "" {
		return result{}, ErrEmptyKey
	}
	req.reply = make(chan result, 1)

	select {
	case w.requests <- req:
	case <-w.done:
		return result{}, ErrWorkerDown
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res, res.err
	case <-w.done:
		// The reply may have been sent just before exit
		select {
		case res := <-req.reply:
			return res, res.err
		default:
			return result{}, ErrWorkerDown
		}
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

func (w *Worker) run() {
	var reason error
	defer func() {
		w.mu.Lock()
		w.reason = reason
		w.mu.Unlock()
		w.cache.Flush()
		close(w.done)
		w.logExit(reason)
	}()

	for {
		select {
		case reason = <-w.quit:
			return
		default:
		}

		select {
		case req := <-w.requests:
			if perr := w.handle(req); perr != nil {
				reason = perr
				return
			}
		case reason = <-w.quit:
			return
		}
	}
}

// handle serves one request. A panic is reported to the caller and returned
// as the worker's termination reason.
func (w *Worker) handle(req request) (perr *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &PanicError{
				WorkerID: w.id,
				Op:       req.op.String(),
				Value:    r,
				Stack:    string(debug.Stack()),
			}
			req.reply <- result{err: perr}
		}
	}()

	var res result
	switch req.op {
	case opGet:
		res.value, res.found = w.cache.Get(req.key)
	case opPut:
		w.cache.Set(req.key, req.value, req.ttl)
	case opDelete:
		res.value, res.found = w.cache.Get(req.key)
		w.cache.Delete(req.key)
	case opLen:
		res.n = w.cache.ItemCount()
	case opUpdate:
		old, found := w.cache.Get(req.key)
		res.value, res.found = req.fn(old, found)
		if res.found {
			w.cache.Set(req.key, res.value, gocache.DefaultExpiration)
		} else {
			w.cache.Delete(req.key)
		}
	}
	req.reply <- res
	return nil
}

func (w *Worker) logExit(reason error) {
	if w.logger == nil {
		return
	}
	if reason == nil {
		w.logger.Debug("worker stopped", slog.String("worker_id", w.id))
		return
	}
	w.logger.Warn("worker crashed",
		slog.String("worker_id", w.id),
		slog.String("reason", reason.Error()),
	)
}
