package lifecycle

import (
	"context"
	"testing"
	"time"
)

func TestGatePostIsIdempotentBeforeWait(t *testing.T) {
	ctx := newAppContext("com.example.app")
	ctx.PostAppRunning()
	ctx.PostAppRunning() // must not panic or deadlock a future wait

	waitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ctx.WaitAppRunning(waitCtx); err != nil {
		t.Fatalf("WaitAppRunning after two posts: %v", err)
	}
}

func TestGateWaitTimesOutWithoutPost(t *testing.T) {
	ctx := newAppContext("com.example.app")
	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := ctx.WaitAppReady(waitCtx); err == nil {
		t.Fatalf("WaitAppReady returned nil without a post")
	}
}

func TestAdvanceReturnsPriorState(t *testing.T) {
	ctx := newAppContext("com.example.app")
	old := ctx.Advance(Loading, 1, time.Now())
	if old != Unloaded {
		t.Fatalf("Advance returned %s, want Unloaded", old)
	}
	if ctx.CurrentState() != Loading {
		t.Fatalf("CurrentState() = %s, want Loading", ctx.CurrentState())
	}
	if ctx.StateChangeId() != 1 {
		t.Fatalf("StateChangeId() = %d, want 1", ctx.StateChangeId())
	}
}

func TestSetTargetStateKeepsLastNonEmptyIntent(t *testing.T) {
	ctx := newAppContext("com.example.app")
	ctx.SetTargetState(Active, "home")
	ctx.SetTargetState(Paused, "")
	if got := ctx.MostRecentIntent(); got != "home" {
		t.Fatalf("MostRecentIntent() = %q, want %q", got, "home")
	}
	if ctx.TargetState() != Paused {
		t.Fatalf("TargetState() = %s, want Paused", ctx.TargetState())
	}
}

func TestMarkSpecBuiltOnlyOnce(t *testing.T) {
	ctx := newAppContext("com.example.app")
	if ctx.MarkSpecBuilt() {
		t.Fatalf("MarkSpecBuilt() reported already built on first call")
	}
	if !ctx.MarkSpecBuilt() {
		t.Fatalf("MarkSpecBuilt() reported not-built on second call")
	}
}
