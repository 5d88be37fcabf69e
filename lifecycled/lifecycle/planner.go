package lifecycle

import (
	"sort"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
)

// Plan computes the ordered sequence of states to traverse from current to
// target, per spec §4.3 (the Transition Planner).
//
// If current == target, the path is empty and err is nil. Otherwise a
// reverse breadth-first search runs from target over the predecessor table
// until current is reached; the discovered predecessor chain is reversed
// and target is appended. If target == Terminating, Unloaded is appended
// after it (the implicit terminal step). If no route exists, Plan returns
// errs.NoPath and a nil path.
//
// BFS visits predecessor candidates at each level in increasing State
// ordinal order, which makes the choice between equally-short paths
// deterministic for a fixed graph (spec §4.3's tie-break requirement).
func Plan(current, target State) ([]State, error) {
	if !current.Valid() {
		return nil, errs.New(errs.InvalidArgument, "invalid current state %d", current)
	}
	if !target.Valid() {
		return nil, errs.New(errs.InvalidArgument, "invalid target state %d", target)
	}

	if current == target {
		return nil, nil
	}

	// cameFrom[s] = the state BFS reached s from, walking the predecessor
	// edges backwards (i.e. from target towards current).
	cameFrom := map[State]State{target: target}
	queue := []State{target}

	found := current == target
	for len(queue) > 0 && !found {
		node := queue[0]
		queue = queue[1:]

		preds := append([]State(nil), Predecessors(node)...)
		sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })

		for _, p := range preds {
			if _, seen := cameFrom[p]; seen {
				continue
			}
			cameFrom[p] = node
			if p == current {
				found = true
				break
			}
			queue = append(queue, p)
		}
	}

	if !found {
		return nil, errs.New(errs.NoPath, "no transition path from %s to %s", current, target)
	}

	// Walk cameFrom from current back to target, collecting the forward
	// path (excludes current, includes target).
	var path []State
	node := current
	for node != target {
		next := cameFrom[node]
		path = append(path, next)
		node = next
	}

	if target == Terminating {
		path = append(path, Unloaded)
	}

	return path, nil
}
