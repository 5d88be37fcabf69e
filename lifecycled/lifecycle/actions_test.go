package lifecycle

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type fakeRuntime struct {
	runCalled, suspendCalled, resumeCalled, hibernateCalled, wakeCalled, terminateCalled, killCalled int
	wokeTowards                                                                                      State
}

func (f *fakeRuntime) Run(context.Context, AppInstanceId, json.RawMessage) error {
	f.runCalled++
	return nil
}
func (f *fakeRuntime) Suspend(context.Context, AppInstanceId) error { f.suspendCalled++; return nil }
func (f *fakeRuntime) Resume(context.Context, AppInstanceId) error  { f.resumeCalled++; return nil }
func (f *fakeRuntime) Hibernate(context.Context, AppInstanceId, string) error {
	f.hibernateCalled++
	return nil
}
func (f *fakeRuntime) Wake(_ context.Context, _ AppInstanceId, towards State) error {
	f.wakeCalled++
	f.wokeTowards = towards
	return nil
}
func (f *fakeRuntime) Terminate(context.Context, AppInstanceId) error { f.terminateCalled++; return nil }
func (f *fakeRuntime) Kill(context.Context, AppInstanceId) error      { f.killCalled++; return nil }
func (f *fakeRuntime) GetInfo(context.Context, AppInstanceId) (string, error) {
	return "", nil
}

type fakeDisplay struct {
	renderEnabled bool
	renderReady   bool
}

func (f *fakeDisplay) EnableRender(_ context.Context, _ AppInstanceId, enable bool) error {
	f.renderEnabled = enable
	return nil
}
func (f *fakeDisplay) RenderReady(context.Context, AppInstanceId) (bool, error) {
	return f.renderReady, nil
}

func testCollaborators(rt *fakeRuntime, disp *fakeDisplay) Collaborators {
	return Collaborators{
		Runtime: rt,
		Display: disp,
		BuildSpec: func(AppId, RuntimeConfig) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
		GateDeadline: 200 * time.Millisecond,
	}
}

func TestEnterInitializingBuildsSpecOnce(t *testing.T) {
	rt := &fakeRuntime{}
	collab := testCollaborators(rt, &fakeDisplay{})
	appCtx := newAppContext("com.example.app")
	appCtx.PostAppRunning()

	if err := Enter(context.Background(), appCtx, Initializing, false, collab); err != nil {
		t.Fatalf("Enter(Initializing): %v", err)
	}
	if rt.runCalled != 1 {
		t.Fatalf("Runtime.Run called %d times, want 1", rt.runCalled)
	}

	// A second Initializing entry (e.g. on retry) must not rebuild/re-run.
	appCtx.PostAppRunning()
	if err := Enter(context.Background(), appCtx, Initializing, false, collab); err != nil {
		t.Fatalf("second Enter(Initializing): %v", err)
	}
	if rt.runCalled != 1 {
		t.Fatalf("Runtime.Run called %d times after retry, want still 1", rt.runCalled)
	}
}

func TestEnterPausedFromActiveMakesNoCollaboratorCall(t *testing.T) {
	rt := &fakeRuntime{}
	disp := &fakeDisplay{renderEnabled: true}
	collab := testCollaborators(rt, disp)
	appCtx := newAppContext("com.example.app")
	appCtx.Advance(Active, 1, time.Now())

	if err := Enter(context.Background(), appCtx, Paused, false, collab); err != nil {
		t.Fatalf("Enter(Paused): %v", err)
	}
	if !disp.renderEnabled {
		t.Fatalf("rendering disabled after Paused from Active, want no collaborator call")
	}
	if rt.suspendCalled != 0 || rt.resumeCalled != 0 {
		t.Fatalf("runtime called from Active predecessor, want no collaborator call")
	}
}

func TestEnterPausedFromInitializingMakesNoCollaboratorCall(t *testing.T) {
	rt := &fakeRuntime{}
	disp := &fakeDisplay{renderEnabled: false}
	collab := testCollaborators(rt, disp)
	appCtx := newAppContext("com.example.app")
	appCtx.PostAppRunning()
	if err := Enter(context.Background(), appCtx, Initializing, false, collab); err != nil {
		t.Fatalf("Enter(Initializing): %v", err)
	}
	// Enter never advances current_state itself; the dispatcher does.
	appCtx.Advance(Initializing, 1, time.Now())

	if err := Enter(context.Background(), appCtx, Paused, false, collab); err != nil {
		t.Fatalf("Enter(Paused): %v", err)
	}
	if disp.renderEnabled {
		t.Fatalf("rendering enabled after Paused from Initializing, want no collaborator call")
	}
	if rt.suspendCalled != 0 || rt.resumeCalled != 0 {
		t.Fatalf("runtime called from Initializing predecessor, want no collaborator call")
	}
}

func TestEnterSuspendedFromHibernatedWakes(t *testing.T) {
	rt := &fakeRuntime{}
	collab := testCollaborators(rt, &fakeDisplay{})
	appCtx := newAppContext("com.example.app")
	appCtx.Advance(Hibernated, 1, time.Now())

	if err := Enter(context.Background(), appCtx, Suspended, false, collab); err != nil {
		t.Fatalf("Enter(Suspended): %v", err)
	}
	if rt.wakeCalled != 1 || rt.wokeTowards != Suspended {
		t.Fatalf("Runtime.Wake called %d times targeting %s, want 1 call targeting Suspended", rt.wakeCalled, rt.wokeTowards)
	}
	if rt.suspendCalled != 0 {
		t.Fatalf("Runtime.Suspend called from a Hibernated predecessor, want 0 calls")
	}
}

func TestEnterTerminatingUsesKillForceFlag(t *testing.T) {
	rt := &fakeRuntime{}
	collab := testCollaborators(rt, &fakeDisplay{})
	appCtx := newAppContext("com.example.app")
	appCtx.PostAppTerminating()

	// killForce is passed explicitly, as the dispatcher would from the
	// dispatch.Request driving this step -- not read off appCtx.
	if err := Enter(context.Background(), appCtx, Terminating, true, collab); err != nil {
		t.Fatalf("Enter(Terminating): %v", err)
	}
	if rt.killCalled != 1 || rt.terminateCalled != 0 {
		t.Fatalf("kill=%d terminate=%d, want kill=1 terminate=0", rt.killCalled, rt.terminateCalled)
	}
}

func TestEnterTerminatingGracefulWithoutKillForce(t *testing.T) {
	rt := &fakeRuntime{}
	collab := testCollaborators(rt, &fakeDisplay{})
	appCtx := newAppContext("com.example.app")
	appCtx.PostAppTerminating()

	if err := Enter(context.Background(), appCtx, Terminating, false, collab); err != nil {
		t.Fatalf("Enter(Terminating): %v", err)
	}
	if rt.killCalled != 0 || rt.terminateCalled != 1 {
		t.Fatalf("kill=%d terminate=%d, want kill=0 terminate=1", rt.killCalled, rt.terminateCalled)
	}
}

func TestEnterUnknownTargetRejected(t *testing.T) {
	collab := testCollaborators(&fakeRuntime{}, &fakeDisplay{})
	appCtx := newAppContext("com.example.app")
	if err := Enter(context.Background(), appCtx, State(99), false, collab); err == nil {
		t.Fatalf("Enter with an invalid target state returned nil error")
	}
}
