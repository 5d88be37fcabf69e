package lifecycle

import "testing"

func TestIsLegalEdge(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{Unloaded, Loading, true},
		{Loading, Initializing, true},
		{Initializing, Paused, true},
		{Active, Paused, true},
		{Suspended, Paused, true},
		{Paused, Terminating, true},
		{Suspended, Terminating, true},
		{Terminating, Unloaded, true},
		{Active, Terminating, false},
		{Loading, Active, false},
		{Hibernated, Active, false},
	}
	for _, tc := range cases {
		if got := IsLegalEdge(tc.from, tc.to); got != tc.want {
			t.Errorf("IsLegalEdge(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestUnloadedHasNoPredecessors(t *testing.T) {
	if p := Predecessors(Unloaded); p != nil {
		t.Errorf("Predecessors(Unloaded) = %v, want nil", p)
	}
}
