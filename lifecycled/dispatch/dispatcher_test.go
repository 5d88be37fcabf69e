package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/events"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

type fakeRuntime struct {
	killCalled, terminateCalled int
}

func (f *fakeRuntime) Run(context.Context, lifecycle.AppInstanceId, json.RawMessage) error {
	return nil
}
func (f *fakeRuntime) Suspend(context.Context, lifecycle.AppInstanceId) error { return nil }
func (f *fakeRuntime) Resume(context.Context, lifecycle.AppInstanceId) error  { return nil }
func (f *fakeRuntime) Hibernate(context.Context, lifecycle.AppInstanceId, string) error {
	return nil
}
func (f *fakeRuntime) Wake(context.Context, lifecycle.AppInstanceId, lifecycle.State) error {
	return nil
}
func (f *fakeRuntime) Terminate(context.Context, lifecycle.AppInstanceId) error {
	f.terminateCalled++
	return nil
}
func (f *fakeRuntime) Kill(context.Context, lifecycle.AppInstanceId) error {
	f.killCalled++
	return nil
}
func (f *fakeRuntime) GetInfo(context.Context, lifecycle.AppInstanceId) (string, error) {
	return "", nil
}

type fakeDisplay struct{}

func (f *fakeDisplay) EnableRender(context.Context, lifecycle.AppInstanceId, bool) error {
	return nil
}
func (f *fakeDisplay) RenderReady(context.Context, lifecycle.AppInstanceId) (bool, error) {
	return true, nil
}

type recordingStateObserver struct {
	ch chan lifecycle.State
}

func (r *recordingStateObserver) OnAppLifecycleStateChanged(_ lifecycle.AppId, _ lifecycle.AppInstanceId, _, newState lifecycle.State, _ string) {
	r.ch <- newState
}

func testCollaborators(rt *fakeRuntime) lifecycle.Collaborators {
	return lifecycle.Collaborators{
		Runtime: rt,
		Display: &fakeDisplay{},
		BuildSpec: func(lifecycle.AppId, lifecycle.RuntimeConfig) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
		GateDeadline: 200 * time.Millisecond,
	}
}

func waitForState(t *testing.T, ch chan lifecycle.State, want lifecycle.State, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestDispatcherDrivesAppToTarget(t *testing.T) {
	registry := lifecycle.NewRegistry()
	fanout := events.New()
	obs := &recordingStateObserver{ch: make(chan lifecycle.State, 16)}
	fanout.RegisterState(obs)

	rt := &fakeRuntime{}
	d := New(registry, testCollaborators(rt), fanout, nil)
	d.Start()
	defer d.Stop()

	appCtx := registry.GetOrCreate("com.example.app")
	appCtx.SetTargetState(lifecycle.Active, "home")
	// Stands in for the runtime's onStateChanged(RUNNING) notification,
	// which Initializing waits for.
	appCtx.PostAppRunning()
	d.Enqueue(Request{AppId: "com.example.app", Target: lifecycle.Active, Intent: "home"})

	waitForState(t, obs.ch, lifecycle.Active, time.Second)
	if appCtx.CurrentState() != lifecycle.Active {
		t.Fatalf("CurrentState() = %s, want Active", appCtx.CurrentState())
	}
}

func TestDispatcherTerminatingDropsContext(t *testing.T) {
	registry := lifecycle.NewRegistry()
	fanout := events.New()
	obs := &recordingStateObserver{ch: make(chan lifecycle.State, 16)}
	fanout.RegisterState(obs)

	rt := &fakeRuntime{}
	d := New(registry, testCollaborators(rt), fanout, nil)
	d.Start()
	defer d.Stop()

	registry.GetOrCreate("com.example.app").Advance(lifecycle.Active, 1, time.Now())
	appCtx, _ := registry.Find(lifecycle.ByAppId, "com.example.app")
	appCtx.SetTargetState(lifecycle.Terminating, "")
	// Stands in for the runtime's onTerminated notification, which
	// Terminating waits for.
	appCtx.PostAppTerminating()
	d.Enqueue(Request{AppId: "com.example.app", Target: lifecycle.Terminating})

	waitForState(t, obs.ch, lifecycle.Unloaded, time.Second)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !registry.Exists("com.example.app") {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if registry.Exists("com.example.app") {
		t.Fatalf("context for a fully terminated app was not dropped from the registry")
	}
	if rt.terminateCalled != 1 {
		t.Fatalf("Runtime.Terminate called %d times, want 1", rt.terminateCalled)
	}
}

func TestDispatcherNoPathLeavesStateUnchanged(t *testing.T) {
	registry := lifecycle.NewRegistry()
	fanout := events.New()
	obs := &recordingStateObserver{ch: make(chan lifecycle.State, 16)}
	fanout.RegisterState(obs)

	d := New(registry, testCollaborators(&fakeRuntime{}), fanout, nil)
	d.Start()
	defer d.Stop()

	appCtx := registry.GetOrCreate("com.example.app")
	appCtx.Advance(lifecycle.Active, 1, time.Now())
	// Unloaded is only ever reached via the implicit Terminating step, so
	// a direct Active -> Unloaded request has no plan.
	appCtx.SetTargetState(lifecycle.Unloaded, "")
	d.Enqueue(Request{AppId: "com.example.app", Target: lifecycle.Unloaded})

	waitForState(t, obs.ch, lifecycle.Active, time.Second)
	if appCtx.CurrentState() != lifecycle.Active {
		t.Fatalf("CurrentState() = %s, want Active (unchanged, no plan executed)", appCtx.CurrentState())
	}
}

func TestEnqueueUnknownAppIsANoOp(t *testing.T) {
	registry := lifecycle.NewRegistry()
	fanout := events.New()
	d := New(registry, testCollaborators(&fakeRuntime{}), fanout, nil)
	d.Start()
	d.Enqueue(Request{AppId: "com.example.never-created", Target: lifecycle.Active})
	d.Stop()
}

func TestDispatcherUsesRequestKillForceNotLaterContextUpdate(t *testing.T) {
	registry := lifecycle.NewRegistry()
	fanout := events.New()
	obs := &recordingStateObserver{ch: make(chan lifecycle.State, 16)}
	fanout.RegisterState(obs)

	rt := &fakeRuntime{}
	d := New(registry, testCollaborators(rt), fanout, nil)
	d.Start()
	defer d.Stop()

	registry.GetOrCreate("com.example.app").Advance(lifecycle.Active, 1, time.Now())
	appCtx, _ := registry.Find(lifecycle.ByAppId, "com.example.app")
	appCtx.SetTargetState(lifecycle.Terminating, "")
	// The context's own reporting field says graceful, but the queued
	// request says force -- the worker must obey the request.
	appCtx.SetKillForce(false)
	appCtx.PostAppTerminating()
	d.Enqueue(Request{AppId: "com.example.app", Target: lifecycle.Terminating, KillForce: true})

	waitForState(t, obs.ch, lifecycle.Unloaded, time.Second)
	if rt.killCalled != 1 || rt.terminateCalled != 0 {
		t.Fatalf("kill=%d terminate=%d, want kill=1 terminate=0 (request's own KillForce, not the context's)", rt.killCalled, rt.terminateCalled)
	}
}
