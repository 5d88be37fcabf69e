// Package events implements the two parallel observer lists and the
// per-app ordered fan-out worker pool described as C10.
package events

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// LifecycleObserver receives the coarse-grained "lifecycle" notification:
// the app's new state plus an error reason when the step that produced it
// failed.
type LifecycleObserver interface {
	OnAppStateChanged(appId lifecycle.AppId, newState lifecycle.State, errorReason string)
}

// StateObserver receives the fine-grained "state" notification: the full
// old/new state pair, the instance id, and the navigation intent that
// accompanied the request.
type StateObserver interface {
	OnAppLifecycleStateChanged(appId lifecycle.AppId, instanceId lifecycle.AppInstanceId, oldState, newState lifecycle.State, navigationIntent string)
}

// FanOut holds both observer lists and a per-app ordered delivery queue.
// Delivery is offloaded to a goroutine per app rather than a single
// shared worker so that one app's slow observer never delays another
// app's events, while still guaranteeing per-app order (spec §4.7/§5):
// the dispatcher's single worker goroutine only ever submits one app's
// events at a time and in transition order, and each app's own shard
// channel preserves that order across the hand-off.
type FanOut struct {
	mu                 sync.Mutex
	lifecycleObservers []LifecycleObserver
	stateObservers     []StateObserver

	shardsMu sync.Mutex
	shards   map[lifecycle.AppId]chan func()
}

// New constructs an empty FanOut.
func New() *FanOut {
	return &FanOut{shards: make(map[lifecycle.AppId]chan func())}
}

// RegisterLifecycle adds o to the lifecycle list. Registering the same
// observer twice is a no-op (spec §4.7).
func (f *FanOut) RegisterLifecycle(o LifecycleObserver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.lifecycleObservers {
		if existing == o {
			return
		}
	}
	f.lifecycleObservers = append(f.lifecycleObservers, o)
}

// UnregisterLifecycle removes o from the lifecycle list, returning a
// distinct error if o was never registered (spec §4.7).
func (f *FanOut) UnregisterLifecycle(o LifecycleObserver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.lifecycleObservers {
		if existing == o {
			f.lifecycleObservers = append(f.lifecycleObservers[:i], f.lifecycleObservers[i+1:]...)
			return nil
		}
	}
	return errs.New(errs.InvalidArgument, "lifecycle observer not registered")
}

// RegisterState adds o to the state list. Registering the same observer
// twice is a no-op.
func (f *FanOut) RegisterState(o StateObserver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.stateObservers {
		if existing == o {
			return
		}
	}
	f.stateObservers = append(f.stateObservers, o)
}

// UnregisterState removes o from the state list, returning a distinct
// error if o was never registered.
func (f *FanOut) UnregisterState(o StateObserver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.stateObservers {
		if existing == o {
			f.stateObservers = append(f.stateObservers[:i], f.stateObservers[i+1:]...)
			return nil
		}
	}
	return errs.New(errs.InvalidArgument, "state observer not registered")
}

// shardFor returns (creating if necessary) the ordered delivery channel
// for appId, backed by a dedicated goroutine. Cardinality is bounded by
// the number of distinct apps ever seen, which is small on a set-top
// device.
func (f *FanOut) shardFor(appId lifecycle.AppId) chan func() {
	f.shardsMu.Lock()
	defer f.shardsMu.Unlock()
	ch, ok := f.shards[appId]
	if !ok {
		ch = make(chan func(), 64)
		f.shards[appId] = ch
		go func() {
			for work := range ch {
				work()
			}
		}()
	}
	return ch
}

// Emit submits one transition's notifications to both observer lists, on
// appId's shard so ordering relative to appId's other events is
// preserved. errReason is empty on a successful step.
func (f *FanOut) Emit(appId lifecycle.AppId, instanceId lifecycle.AppInstanceId, oldState, newState lifecycle.State, navigationIntent, errReason string) {
	ch := f.shardFor(appId)
	ch <- func() {
		defer func() {
			// Observer delivery failures are logged and swallowed, never
			// propagated back to the dispatcher (spec §7).
			if r := recover(); r != nil {
				logrus.WithField("appId", appId).WithField("panic", r).Error("observer panicked during event delivery")
			}
		}()

		f.mu.Lock()
		lcs := append([]LifecycleObserver(nil), f.lifecycleObservers...)
		sos := append([]StateObserver(nil), f.stateObservers...)
		f.mu.Unlock()

		for _, o := range lcs {
			o.OnAppStateChanged(appId, newState, errReason)
		}
		for _, o := range sos {
			o.OnAppLifecycleStateChanged(appId, instanceId, oldState, newState, navigationIntent)
		}
	}
}

// Close stops every per-app delivery goroutine once the caller is certain
// no further events will be submitted (service shutdown). Already-queued
// work items still run to completion before their shard goroutine exits.
func (f *FanOut) Close() {
	f.shardsMu.Lock()
	defer f.shardsMu.Unlock()
	for _, ch := range f.shards {
		close(ch)
	}
}
