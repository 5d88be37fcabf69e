package lifecycle

// predecessors is the static, read-only adjacency table: for each state,
// the set of states it may be entered from. This is the Transition Graph
// (spec §4.2). It never changes at runtime and is safe for concurrent
// reads without a lock.
//
// The map's iteration order is never relied on for correctness; wherever
// the planner needs a deterministic tie-break between equally-short paths
// it sorts candidates explicitly (see planner.go).
var predecessors = map[State][]State{
	Unloaded:     nil, // initial state, no predecessor edge
	Loading:      {Unloaded},
	Initializing: {Loading},
	Paused:       {Initializing, Active, Suspended},
	Active:       {Paused},
	Suspended:    {Initializing, Paused, Hibernated},
	Hibernated:   {Suspended},
	Terminating:  {Paused, Suspended},
}

// Predecessors returns the set of states permitted to enter target from,
// per the Transition Graph. The returned slice must not be mutated.
func Predecessors(target State) []State {
	return predecessors[target]
}

// IsLegalEdge reports whether (from, to) is a permitted edge in the
// Transition Graph, including the implicit Terminating->Unloaded edge.
func IsLegalEdge(from, to State) bool {
	if from == Terminating && to == Unloaded {
		return true
	}
	for _, p := range predecessors[to] {
		if p == from {
			return true
		}
	}
	return false
}
