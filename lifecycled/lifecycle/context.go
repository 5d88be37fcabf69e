package lifecycle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// AppId is the caller-chosen logical application identity, stable across
// loads (spec §3).
type AppId string

// AppInstanceId is the core-generated identity for a single loaded
// instance, regenerated every time an AppId is spawned anew after being
// fully unloaded (spec §3).
type AppInstanceId string

// LaunchParams captures everything needed to rebuild a context on
// CloseApp's KILL_AND_RUN/KILL_AND_ACTIVATE paths, per spec §3's
// launch_params field.
type LaunchParams struct {
	AppId         AppId
	Intent        string
	Args          string
	InitialTarget State
	RuntimeConfig any // RuntimeConfig value snapshot, read back with a type assertion
}

// gateName identifies one of the six named per-context readiness gates
// described in spec §3/§5.
type gateName int

const (
	gateReachedLoading gateName = iota
	gateAppRunning
	gateAppReady
	gateFirstFrame
	gateFirstFrameAfterResume
	gateAppTerminating
	numGates
)

// gate is a single-producer/single-consumer rendezvous primitive with
// deadline support, modeled as a binary semaphore (spec §5: "counting
// semaphore semantics: post is idempotent in effect -- each wait consumes
// one post"). It is never held across a collaborator call.
type gate struct {
	sem   *semaphore.Weighted
	mu    sync.Mutex
	armed bool
}

func newGate() *gate {
	g := &gate{sem: semaphore.NewWeighted(1)}
	// Take the single unit up front so the gate starts unposted: wait
	// blocks until the first post releases it.
	g.sem.TryAcquire(1)
	return g
}

// post signals the gate. A second post before the first is consumed by a
// wait is a no-op (idempotent), matching spec §5.
func (g *gate) post() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.armed {
		return
	}
	g.armed = true
	g.sem.Release(1)
}

// wait blocks until posted or ctx is done, whichever comes first. On
// success it consumes exactly one post.
func (g *gate) wait(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.mu.Lock()
	g.armed = false
	g.mu.Unlock()
	return nil
}

// AppContext is the per-application record owned by the Registry (spec
// §3). current_state changes only on the dispatcher's single worker
// goroutine; every other field that can be read concurrently is guarded
// by mu.
type AppContext struct {
	AppId AppId // immutable after creation

	mu                 sync.Mutex
	appInstanceId      AppInstanceId
	currentState       State
	targetState        State
	lastStateChangeAt  time.Time
	stateChangeId      uint64
	mostRecentIntent   string
	launchParams       LaunchParams
	killForce          bool
	specBuilt          bool

	gates [numGates]*gate
}

func newAppContext(id AppId) *AppContext {
	ctx := &AppContext{
		AppId:        id,
		currentState: Unloaded,
		targetState:  Unloaded,
	}
	for i := range ctx.gates {
		ctx.gates[i] = newGate()
	}
	return ctx
}

// InstanceId returns the context's current app instance id (empty until
// the first Loading transition).
func (c *AppContext) InstanceId() AppInstanceId {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appInstanceId
}

// CurrentState returns the context's current lifecycle state.
func (c *AppContext) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentState
}

// TargetState returns the context's requested target state.
func (c *AppContext) TargetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetState
}

// SetTargetState updates the requested target and the navigation intent
// that accompanied the request.
func (c *AppContext) SetTargetState(target State, intent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targetState = target
	if intent != "" {
		c.mostRecentIntent = intent
	}
}

// MostRecentIntent returns the last navigation intent recorded on this
// context.
func (c *AppContext) MostRecentIntent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mostRecentIntent
}

// SetIntent stores intent without otherwise touching the context, used by
// SendIntentToActiveApp.
func (c *AppContext) SetIntent(intent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mostRecentIntent = intent
}

// SetKillForce records whether the most recently requested termination
// was a hard kill (true) or a graceful terminate (false). This is
// reporting state only (spec §3's kill_force field, surfaced through
// Registry.List()); the dispatcher's worker does not read it back to
// decide how to terminate -- it executes strictly from the killForce
// value captured on the dispatch.Request at enqueue time, so a second
// caller updating this field can never flip the force flag on a
// termination that is already queued.
func (c *AppContext) SetKillForce(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.killForce = force
}

// KillForce reports the most recently requested kill_force value.
func (c *AppContext) KillForce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killForce
}

// SetLaunchParams records the parameters needed to respawn this app later
// (CloseApp's KILL_AND_RUN/KILL_AND_ACTIVATE paths).
func (c *AppContext) SetLaunchParams(p LaunchParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.launchParams = p
}

// LaunchParams returns the last recorded launch parameters.
func (c *AppContext) LaunchParams() LaunchParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.launchParams
}

// MarkSpecBuilt records that the container spec has been built for this
// app's lifetime, so Initializing.enter only builds it once.
func (c *AppContext) MarkSpecBuilt() (alreadyBuilt bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	alreadyBuilt = c.specBuilt
	c.specBuilt = true
	return alreadyBuilt
}

// Advance is called only from the dispatcher's worker goroutine after a
// state action has succeeded. It advances current_state, stamps the
// change time with changeId (a monotonic counter owned by the caller),
// and returns the state the context was in immediately before the call
// so the caller can emit an accurate (oldState, newState) event pair.
func (c *AppContext) Advance(s State, changeId uint64, now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.currentState
	c.currentState = s
	c.stateChangeId = changeId
	c.lastStateChangeAt = now
	return old
}

// StateChangeId returns the monotonic counter value of the last applied
// transition.
func (c *AppContext) StateChangeId() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateChangeId
}

// LastStateChangeAt returns the wallclock time of the last applied
// transition.
func (c *AppContext) LastStateChangeAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStateChangeAt
}

func (c *AppContext) setInstanceId(id AppInstanceId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appInstanceId = id
}

// gate returns one of the six named readiness gates for external adapters
// to post to and the dispatcher to wait on.
func (c *AppContext) gate(name gateName) *gate {
	return c.gates[name]
}

// The Post* methods are called by collaborator adapters translating an
// external notification into an internal gate signal (spec §4.7's "runtime
// event consumer"). The Wait* methods are called by the dispatcher's
// worker goroutine from inside a state action.

func (c *AppContext) PostReachedLoading()        { c.gate(gateReachedLoading).post() }
func (c *AppContext) PostAppRunning()            { c.gate(gateAppRunning).post() }
func (c *AppContext) PostAppReady()              { c.gate(gateAppReady).post() }
func (c *AppContext) PostFirstFrame()            { c.gate(gateFirstFrame).post() }
func (c *AppContext) PostFirstFrameAfterResume() { c.gate(gateFirstFrameAfterResume).post() }
func (c *AppContext) PostAppTerminating()        { c.gate(gateAppTerminating).post() }

func (c *AppContext) WaitReachedLoading(ctx context.Context) error {
	return c.gate(gateReachedLoading).wait(ctx)
}
func (c *AppContext) WaitAppRunning(ctx context.Context) error {
	return c.gate(gateAppRunning).wait(ctx)
}
func (c *AppContext) WaitAppReady(ctx context.Context) error {
	return c.gate(gateAppReady).wait(ctx)
}
func (c *AppContext) WaitFirstFrame(ctx context.Context) error {
	return c.gate(gateFirstFrame).wait(ctx)
}
func (c *AppContext) WaitFirstFrameAfterResume(ctx context.Context) error {
	return c.gate(gateFirstFrameAfterResume).wait(ctx)
}
func (c *AppContext) WaitAppTerminating(ctx context.Context) error {
	return c.gate(gateAppTerminating).wait(ctx)
}
