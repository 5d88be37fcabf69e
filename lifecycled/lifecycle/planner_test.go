package lifecycle

import (
	"reflect"
	"testing"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
)

func TestPlanSameState(t *testing.T) {
	path, err := Plan(Active, Active)
	if err != nil {
		t.Fatalf("Plan(Active, Active) returned error: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("Plan(Active, Active) = %v, want empty path", path)
	}
}

func TestPlanDirectEdges(t *testing.T) {
	cases := []struct {
		current, target State
		want             []State
	}{
		{Unloaded, Loading, []State{Loading}},
		{Loading, Initializing, []State{Initializing}},
		{Initializing, Paused, []State{Paused}},
		{Paused, Active, []State{Active}},
		{Active, Paused, []State{Paused}},
	}
	for _, tc := range cases {
		got, err := Plan(tc.current, tc.target)
		if err != nil {
			t.Fatalf("Plan(%s, %s) returned error: %v", tc.current, tc.target, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Plan(%s, %s) = %v, want %v", tc.current, tc.target, got, tc.want)
		}
	}
}

func TestPlanTerminatingAppendsUnloaded(t *testing.T) {
	path, err := Plan(Active, Terminating)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(path) < 3 || path[len(path)-1] != Unloaded {
		t.Fatalf("Plan(Active, Terminating) = %v, want last step Unloaded", path)
	}
	if path[len(path)-3] != Paused && path[len(path)-3] != Suspended {
		t.Fatalf("Plan(Active, Terminating) = %v, want Terminating to be reached from Paused or Suspended", path)
	}
}

func TestPlanHibernatedToTerminating(t *testing.T) {
	path, err := Plan(Hibernated, Terminating)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	want := []State{Suspended, Terminating, Unloaded}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("Plan(Hibernated, Terminating) = %v, want %v", path, want)
	}
	for i := 0; i < len(path)-1; i++ {
		from := Hibernated
		if i > 0 {
			from = path[i-1]
		}
		if !IsLegalEdge(from, path[i]) {
			t.Errorf("step %d: %s -> %s is not a legal edge", i, from, path[i])
		}
	}
}

func TestPlanNoPathToUnloaded(t *testing.T) {
	// Unloaded is never a plannable target except trivially when already
	// there: it is only ever reached as Terminating's implicit next step.
	_, err := Plan(Active, Unloaded)
	if !isKind(err, errs.NoPath) {
		t.Fatalf("Plan(Active, Unloaded) = %v, want NoPath", err)
	}
}

func TestPlanInvalidState(t *testing.T) {
	_, err := Plan(State(-1), Active)
	if !isKind(err, errs.InvalidArgument) {
		t.Fatalf("Plan with invalid current state: got %v, want InvalidArgument", err)
	}
	_, err = Plan(Active, State(99))
	if !isKind(err, errs.InvalidArgument) {
		t.Fatalf("Plan with invalid target state: got %v, want InvalidArgument", err)
	}
}

func isKind(err error, kind errs.Kind) bool {
	e, ok := err.(*errs.Error)
	return ok && e.Kind == kind
}
