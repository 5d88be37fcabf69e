package lifecycle

import "testing"

func TestRegistryGetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate("com.example.app")
	b := r.GetOrCreate("com.example.app")
	if a != b {
		t.Fatalf("GetOrCreate returned distinct contexts for the same AppId")
	}
	if a.CurrentState() != Unloaded {
		t.Fatalf("new context started in %s, want Unloaded", a.CurrentState())
	}
}

func TestRegistryFindByEitherKey(t *testing.T) {
	r := NewRegistry()
	ctx := r.GetOrCreate("com.example.app")
	id, err := r.AssignInstanceId(ctx)
	if err != nil {
		t.Fatalf("AssignInstanceId: %v", err)
	}

	if got, ok := r.Find(ByAppId, "com.example.app"); !ok || got != ctx {
		t.Fatalf("Find(ByAppId) = %v, %v, want %v, true", got, ok, ctx)
	}
	if got, ok := r.Find(ByAppInstanceId, string(id)); !ok || got != ctx {
		t.Fatalf("Find(ByAppInstanceId) = %v, %v, want %v, true", got, ok, ctx)
	}
	if _, ok := r.Find(ByAppId, "com.example.unknown"); ok {
		t.Fatalf("Find(ByAppId) found an unregistered app id")
	}
}

func TestAssignInstanceIdRejectsSecondAssignment(t *testing.T) {
	r := NewRegistry()
	ctx := r.GetOrCreate("com.example.app")
	if _, err := r.AssignInstanceId(ctx); err != nil {
		t.Fatalf("first AssignInstanceId: %v", err)
	}
	if _, err := r.AssignInstanceId(ctx); err == nil {
		t.Fatalf("second AssignInstanceId succeeded, want error")
	}
}

func TestDropIfTerminalOnlyDropsViaTerminating(t *testing.T) {
	r := NewRegistry()
	ctx := r.GetOrCreate("com.example.app")

	r.DropIfTerminal(ctx, false)
	if !r.Exists("com.example.app") {
		t.Fatalf("DropIfTerminal(viaTerminating=false) dropped a context that never terminated")
	}

	ctx.Advance(Unloaded, 1, ctx.LastStateChangeAt())
	r.DropIfTerminal(ctx, true)
	if r.Exists("com.example.app") {
		t.Fatalf("DropIfTerminal(viaTerminating=true) on an Unloaded context did not drop it")
	}
}

func TestRegistryListIsSortedByAppId(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("b.app")
	r.GetOrCreate("a.app")
	r.GetOrCreate("c.app")

	snaps := r.List()
	if len(snaps) != 3 {
		t.Fatalf("List returned %d snapshots, want 3", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i-1].AppId > snaps[i].AppId {
			t.Fatalf("List not sorted: %v", snaps)
		}
	}
}
