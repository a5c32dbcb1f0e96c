// Package supervisor spawns kv workers on demand and reports their exits.
//
// A Supervisor never restarts a child. When a worker terminates, for any
// reason, it is forgotten; every Monitor registered on it receives exactly
// one Down notification, unless it was cancelled with Demonitor first.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
)

// Sentinel errors for spawning.
var (
	// ErrMaxWorkers indicates the live-worker limit has been reached.
	ErrMaxWorkers = errors.New("maximum number of workers reached")

	// ErrShutdown indicates the supervisor no longer accepts children.
	ErrShutdown = errors.New("supervisor is shut down")
)

// SpawnError wraps a failure to start a worker.
type SpawnError struct {
	Err error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn worker: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Token identifies one monitor registration.
type Token string

func newToken() Token {
	return Token("mon-" + uuid.New().String())
}

// Down is delivered when a monitored worker terminates.
type Down struct {
	// Token is the monitor registration that fired.
	Token Token
	// Worker is the terminated worker.
	Worker *kv.Worker
	// Reason is the worker's exit reason; nil means a normal stop.
	Reason error
}

// ReasonString renders the exit reason for logs.
func (d Down) ReasonString() string {
	if d.Reason == nil {
		return "normal"
	}
	return d.Reason.Error()
}

// Supervisor owns the lifecycle of the workers it spawns.
type Supervisor struct {
	cfg config

	mu       sync.Mutex
	children map[string]*kv.Worker
	monitors map[Token]chan struct{}
	closed   bool

	wg sync.WaitGroup
}

// New creates a supervisor with no children.
func New(opts ...Option) *Supervisor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Supervisor{
		cfg:      cfg,
		children: make(map[string]*kv.Worker),
		monitors: make(map[Token]chan struct{}),
	}
}

// Spawn starts a new worker. Failures are returned as *SpawnError.
func (s *Supervisor) Spawn(ctx context.Context) (*kv.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SpawnError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, &SpawnError{Err: ErrShutdown}
	}
	if s.cfg.maxWorkers > 0 && len(s.children) >= s.cfg.maxWorkers {
		return nil, &SpawnError{Err: ErrMaxWorkers}
	}

	w := kv.New(s.cfg.workerOpts...)
	s.children[w.ID()] = w

	s.wg.Add(1)
	go s.reap(w)

	if s.cfg.logger != nil {
		s.cfg.logger.Debug("worker spawned",
			slog.String("worker_id", w.ID()),
			slog.Int("children", len(s.children)),
		)
	}
	return w, nil
}

// reap forgets a child once it exits. There is no restart.
func (s *Supervisor) reap(w *kv.Worker) {
	defer s.wg.Done()
	<-w.Done()

	s.mu.Lock()
	delete(s.children, w.ID())
	s.mu.Unlock()
}

// Monitor subscribes deliver to w's termination. deliver runs at most once,
// on its own goroutine, and may block. If w has already exited, deliver is
// still called.
func (s *Supervisor) Monitor(w *kv.Worker, deliver func(Down)) Token {
	tok := newToken()
	cancel := make(chan struct{})

	s.mu.Lock()
	s.monitors[tok] = cancel
	// Shutdown only waits for monitors registered before it began.
	tracked := !s.closed
	if tracked {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	go func() {
		if tracked {
			defer s.wg.Done()
		}
		select {
		case <-w.Done():
		case <-cancel:
			return
		}

		s.mu.Lock()
		_, live := s.monitors[tok]
		delete(s.monitors, tok)
		s.mu.Unlock()

		if live {
			deliver(Down{Token: tok, Worker: w, Reason: w.Err()})
		}
	}()
	return tok
}

// Demonitor cancels a monitor. It reports whether the monitor was still
// pending; false means it already fired or never existed.
func (s *Supervisor) Demonitor(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.monitors[tok]
	if !ok {
		return false
	}
	delete(s.monitors, tok)
	close(cancel)
	return true
}

// Len returns the number of live children.
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children)
}

// Shutdown stops every child normally and waits for reapers and monitor
// deliveries to finish, or for ctx to end. Spawn fails afterwards.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	children := make([]*kv.Worker, 0, len(s.children))
	for _, w := range s.children {
		children = append(children, w)
	}
	s.mu.Unlock()

	for _, w := range children {
		w.Stop()
	}

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("supervisor shutdown: %w", ctx.Err())
	}
}
