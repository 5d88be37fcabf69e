package dispatch

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// Request is the immutable value enqueued into the dispatcher, capturing
// the target state, navigation intent, and kill-force flag in effect at
// the moment the caller asked for a transition -- spec §3's
// TransitionRequest, grounded on the original's StateTransitionRequest
// (StateTransitionRequest.h), which captures its target state by value
// rather than by reference back into the context. The worker plans and
// executes strictly from this captured value, never from AppContext's
// own (still-mutable, display-only) target_state/kill_force fields, so a
// later caller updating those fields can never silently supersede or
// overwrite a request that is already queued.
type Request struct {
	AppId     lifecycle.AppId
	Target    lifecycle.State
	Intent    string
	KillForce bool
}

// fifo is the thread-safe request queue described in spec §4.6: push is
// always non-blocking, and pop blocks the single worker on a counting
// semaphore until an item is available or ctx is cancelled (the shutdown
// path). Reusing golang.org/x/sync/semaphore here, rather than a
// sync.Cond, keeps the queue's blocking primitive the same one the gates
// in lifecycle.AppContext use.
type fifo struct {
	mu    sync.Mutex
	items []Request
	sem   *semaphore.Weighted
}

func newFIFO() *fifo {
	q := &fifo{sem: semaphore.NewWeighted(math.MaxInt64)}
	// Start with the whole weight held so the count of free units equals
	// the number of queued items (zero); each push releases one.
	q.sem.TryAcquire(math.MaxInt64)
	return q
}

// push enqueues req and never blocks.
func (q *fifo) push(req Request) {
	q.mu.Lock()
	q.items = append(q.items, req)
	q.mu.Unlock()
	q.sem.Release(1)
}

// pop blocks until an item is available or ctx is done, in which case ok
// is false.
func (q *fifo) pop(ctx context.Context) (req Request, ok bool) {
	if err := q.sem.Acquire(ctx, 1); err != nil {
		return Request{}, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	req = q.items[0]
	q.items = q.items[1:]
	return req, true
}
