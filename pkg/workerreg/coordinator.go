package workerreg

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/workerreg/pkg/workerreg/journal"
	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
	"github.com/randalmurphal/workerreg/pkg/workerreg/observability"
	"github.com/randalmurphal/workerreg/pkg/workerreg/supervisor"
)

var (
	// errNoWorker is reported when a Supervisor returns neither a worker nor an error.
	errNoWorker = errors.New("supervisor returned no worker")

	// errAbandoned is the kill reason of a worker whose registration panicked.
	errAbandoned = errors.New("worker abandoned: registration failed")
)

type createRequest struct {
	ctx   context.Context
	name  string
	reply chan createReply
}

type createReply struct {
	worker *kv.Worker
	err    error
}

type statsRequest struct {
	reply chan Stats
}

// loop is the coordinator. Each message is handled to completion before the
// next is taken, so the name and watch tables change together.
func (r *Registry) loop() {
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			r.drain()
			return
		case msg := <-r.mailbox:
			r.dispatch(msg)
		}
	}
}

func (r *Registry) dispatch(msg any) {
	defer func() {
		if v := recover(); v != nil {
			observability.LogCoordinatorPanic(r.logger, v, string(debug.Stack()))
			r.metrics.RecordDropped(r.ctx, r.identity, "panic")
			if req, ok := msg.(*createRequest); ok {
				select {
				case req.reply <- createReply{err: &CreateError{
					Identity: r.identity,
					Name:     req.name,
					Err:      fmt.Errorf("coordinator panic: %v", v),
				}}:
				default:
				}
			}
		}
	}()

	switch m := msg.(type) {
	case *createRequest:
		r.handleCreate(m)
	case supervisor.Down:
		r.handleDown(m)
	case *statsRequest:
		m.reply <- Stats{Names: r.names.Len(), Watches: len(r.watches)}
	default:
		observability.LogUnknownMessage(r.logger, msg)
		r.metrics.RecordDropped(r.ctx, r.identity, "unknown_message")
	}
}

// handleCreate re-checks the name table, since an earlier request in the
// mailbox may have registered the name already.
func (r *Registry) handleCreate(req *createRequest) {
	if w, ok := r.names.Get(req.name); ok {
		r.spans.AddSpanEvent(req.ctx, "worker.reused", attribute.String("worker.id", w.ID()))
		req.reply <- createReply{worker: w}
		return
	}

	w, err := r.sup.Spawn(r.ctx)
	if err == nil && w == nil {
		err = errNoWorker
	}
	if err != nil {
		observability.LogSpawnError(r.logger, req.name, err)
		r.metrics.RecordSpawn(r.ctx, r.identity, err)
		r.record(journal.Entry{Name: req.name, Event: journal.EventSpawnFailed, Reason: err.Error()})
		req.reply <- createReply{err: &CreateError{Identity: r.identity, Name: req.name, Err: err}}
		return
	}

	// Until both tables hold the worker, a panic must not leave it running
	// under a monitor that no name owns.
	var tok supervisor.Token
	committed := false
	defer func() {
		if committed {
			return
		}
		if tok != "" {
			r.sup.Demonitor(tok)
			delete(r.watches, tok)
		}
		r.names.CompareAndDelete(req.name, w)
		w.Kill(errAbandoned)
	}()

	// The monitor is in place before the name is visible. A Down for this
	// worker can only be handled after this function returns.
	tok = r.sup.Monitor(w, r.deliverDown)
	r.names.Store(req.name, w)
	r.watches[tok] = req.name
	committed = true

	observability.LogSpawn(r.logger, req.name, w.ID(), string(tok))
	r.metrics.RecordSpawn(r.ctx, r.identity, nil)
	r.spans.AddSpanEvent(req.ctx, "worker.spawned", attribute.String("worker.id", w.ID()))
	r.record(journal.Entry{Name: req.name, WorkerID: w.ID(), Event: journal.EventSpawned})
	req.reply <- createReply{worker: w}
}

// handleDown evicts the name watched by d.Token.
func (r *Registry) handleDown(d supervisor.Down) {
	workerID := ""
	if d.Worker != nil {
		workerID = d.Worker.ID()
	}

	name, ok := r.watches[d.Token]
	if !ok {
		observability.LogUnknownToken(r.logger, string(d.Token), workerID)
		r.metrics.RecordDropped(r.ctx, r.identity, "unknown_token")
		return
	}
	delete(r.watches, d.Token)
	r.names.CompareAndDelete(name, d.Worker)

	observability.LogEvict(r.logger, name, workerID, d.ReasonString())
	r.metrics.RecordEviction(r.ctx, r.identity, d.Reason != nil)
	r.record(journal.Entry{Name: name, WorkerID: workerID, Event: journal.EventEvicted, Reason: d.ReasonString()})
}

// drain runs on the coordinator when Stop is called. Pending monitors are
// cancelled so no further Down is delivered, and every name is forgotten.
func (r *Registry) drain() {
	names := r.names.Len()
	for tok := range r.watches {
		r.sup.Demonitor(tok)
	}
	clear(r.watches)
	r.names.Clear()
	r.metrics.RecordRelease(r.ctx, r.identity, names)
	observability.LogRegistryStop(r.logger, names)
}

// record appends to the journal, if any. Failures are logged and otherwise
// ignored.
func (r *Registry) record(e journal.Entry) {
	if r.journal == nil {
		return
	}
	e.Identity = r.identity
	if err := r.journal.Append(r.ctx, e); err != nil {
		observability.LogJournalError(r.logger, e.Name, string(e.Event), err)
	}
}
