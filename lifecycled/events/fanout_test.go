package events

import (
	"sync"
	"testing"
	"time"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

type recordingObserver struct {
	mu     sync.Mutex
	states []lifecycle.State
}

func (r *recordingObserver) OnAppStateChanged(_ lifecycle.AppId, newState lifecycle.State, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, newState)
}

func (r *recordingObserver) OnAppLifecycleStateChanged(_ lifecycle.AppId, _ lifecycle.AppInstanceId, _, newState lifecycle.State, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, newState)
}

func (r *recordingObserver) snapshot() []lifecycle.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]lifecycle.State(nil), r.states...)
}

func TestRegisterLifecycleIsIdempotent(t *testing.T) {
	f := New()
	o := &recordingObserver{}
	f.RegisterLifecycle(o)
	f.RegisterLifecycle(o)
	if len(f.lifecycleObservers) != 1 {
		t.Fatalf("registered twice, got %d entries, want 1", len(f.lifecycleObservers))
	}
}

func TestUnregisterUnknownObserverErrors(t *testing.T) {
	f := New()
	if err := f.UnregisterLifecycle(&recordingObserver{}); err == nil {
		t.Fatalf("Unregister of an unregistered observer returned nil error")
	}
	if err := f.UnregisterState(&recordingObserver{}); err == nil {
		t.Fatalf("UnregisterState of an unregistered observer returned nil error")
	}
}

func TestEmitPreservesPerAppOrder(t *testing.T) {
	f := New()
	o := &recordingObserver{}
	f.RegisterLifecycle(o)

	appId := lifecycle.AppId("com.example.app")
	order := []lifecycle.State{lifecycle.Loading, lifecycle.Initializing, lifecycle.Paused, lifecycle.Active}
	for i, s := range order {
		from := lifecycle.Unloaded
		if i > 0 {
			from = order[i-1]
		}
		f.Emit(appId, "instance-1", from, s, "", "")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(o.snapshot()) == len(order) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	got := o.snapshot()
	if len(got) != len(order) {
		t.Fatalf("got %d events, want %d", len(got), len(order))
	}
	for i, s := range order {
		if got[i] != s {
			t.Fatalf("event %d = %s, want %s (out of order)", i, got[i], s)
		}
	}
}

func TestClosedAfterEmitDoesNotPanic(t *testing.T) {
	f := New()
	f.Emit("com.example.app", "instance-1", lifecycle.Unloaded, lifecycle.Loading, "", "")
	time.Sleep(10 * time.Millisecond)
	f.Close()
}
