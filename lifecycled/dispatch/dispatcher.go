// Package dispatch implements the request dispatcher (C9): the FIFO
// queue of pending transitions and the single worker goroutine that
// drives every AppContext's current_state.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/events"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// Dispatcher owns the single worker goroutine that performs every
// state-action side effect and current_state mutation in the process
// (spec §5: "Exactly ONE worker thread drives state transitions").
type Dispatcher struct {
	registry *lifecycle.Registry
	collab   lifecycle.Collaborators
	fanout   *events.FanOut
	log      *logrus.Entry

	queue *fifo

	changeId uint64 // atomic, monotonic across all apps (spec §5)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Dispatcher. Call Start to launch its worker goroutine.
func New(registry *lifecycle.Registry, collab lifecycle.Collaborators, fanout *events.FanOut, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		registry: registry,
		collab:   collab,
		fanout:   fanout,
		log:      log,
		queue:    newFIFO(),
	}
}

// Start launches the single worker goroutine. Calling Start twice is not
// supported, mirroring a service that constructs its dispatcher once.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	go d.run(ctx)
}

// Stop signals the worker to drain and wait, cancelling any gate wait
// currently in progress with a Shutdown error (spec §4.6/§5).
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

// Enqueue submits req for processing. req captures the target state,
// intent, and kill-force flag by value at the moment the caller decided
// on them; the worker plans and executes strictly from this captured
// value rather than re-reading the app's context, so a second caller
// enqueuing a new request before the first is popped can never silently
// overwrite or erase it (spec §4.6, grounded on the original's
// StateTransitionRequest being queued by value rather than by reference
// back into the context — StateTransitionRequest.h). The caller is
// still expected to record the same values on the app's context via
// AppContext.SetTargetState / SetKillForce for reporting purposes (e.g.
// Registry.List()), but those fields are never consulted here.
func (d *Dispatcher) Enqueue(req Request) {
	d.queue.push(req)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		req, ok := d.queue.pop(ctx)
		if !ok {
			return
		}
		d.processOne(ctx, req)
	}
}

// processOne resolves req.AppId's context, asks the planner for a path
// from its current state to req.Target, and executes each step strictly
// in order, stopping at the first failure (spec §4.6).
func (d *Dispatcher) processOne(ctx context.Context, req Request) {
	appCtx, ok := d.registry.Find(lifecycle.ByAppId, string(req.AppId))
	if !ok {
		return
	}

	current := appCtx.CurrentState()

	plan, err := lifecycle.Plan(current, req.Target)
	if err != nil {
		d.log.WithField("appId", req.AppId).WithError(err).Warn("no transition plan")
		d.fanout.Emit(req.AppId, appCtx.InstanceId(), current, current, req.Intent, errs.Reason(err))
		return
	}

	viaTerminating := req.Target == lifecycle.Terminating
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			d.failStep(appCtx, req, appCtx.CurrentState(), errs.New(errs.Shutdown, "dispatcher stopped while %s was pending", req.AppId))
			return
		}

		old := appCtx.CurrentState()
		if err := lifecycle.Enter(ctx, appCtx, step, req.KillForce, d.collab); err != nil {
			if ctx.Err() != nil {
				err = errs.Wrap(errs.Shutdown, err, "dispatcher stopped while %s was pending", req.AppId)
			}
			d.failStep(appCtx, req, old, err)
			return
		}

		changeId := atomic.AddUint64(&d.changeId, 1)
		appCtx.Advance(step, changeId, time.Now())
		d.fanout.Emit(req.AppId, appCtx.InstanceId(), old, step, req.Intent, "")
	}

	d.registry.DropIfTerminal(appCtx, viaTerminating)
}

// failStep reports a failed step on both the context (left in its last
// successfully entered state, per spec §7) and the event fan-out.
func (d *Dispatcher) failStep(appCtx *lifecycle.AppContext, req Request, lastGood lifecycle.State, err error) {
	d.log.WithField("appId", req.AppId).WithError(err).Warn("transition step failed")
	d.fanout.Emit(req.AppId, appCtx.InstanceId(), lastGood, lastGood, req.Intent, errs.Reason(err))
}
