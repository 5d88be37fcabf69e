package service

import (
	"context"
	"time"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/dispatch"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/events"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// CloseReason enumerates CloseApp's three behaviors (spec §6).
type CloseReason int

const (
	CloseKill CloseReason = iota
	CloseKillAndRun
	CloseKillAndActivate
)

// SpawnApp creates the app's context if absent, enqueues a transition
// toward targetState, and synchronously waits on reached_loading to
// return the freshly assigned AppInstanceId (spec §6).
func (s *Service) SpawnApp(ctx context.Context, appId lifecycle.AppId, intent string, targetState lifecycle.State, rc lifecycle.RuntimeConfig, launchArgs string) (lifecycle.AppInstanceId, error) {
	appCtx := s.registry.GetOrCreate(appId)

	if appCtx.InstanceId() == "" {
		if _, err := s.registry.AssignInstanceId(appCtx); err != nil {
			return "", err
		}
	}

	appCtx.SetLaunchParams(lifecycle.LaunchParams{
		AppId:         appId,
		Intent:        intent,
		Args:          launchArgs,
		InitialTarget: targetState,
		RuntimeConfig: rc,
	})
	appCtx.SetTargetState(targetState, intent)
	s.dispatcher.Enqueue(dispatch.Request{AppId: appId, Target: targetState, Intent: intent})

	waitCtx, cancel := context.WithTimeout(ctx, s.collab.GateDeadline)
	defer cancel()
	if err := appCtx.WaitReachedLoading(waitCtx); err != nil {
		return "", errs.Wrap(errs.Timeout, err, "waiting for reached_loading on %s", appId)
	}

	return appCtx.InstanceId(), nil
}

// SetTargetAppState updates the context's target and enqueues a
// transition. Non-blocking (spec §6).
func (s *Service) SetTargetAppState(instanceId lifecycle.AppInstanceId, targetState lifecycle.State, intent string) error {
	appCtx, ok := s.registry.Find(lifecycle.ByAppInstanceId, string(instanceId))
	if !ok {
		return errs.New(errs.InvalidArgument, "unknown instance id %q", instanceId)
	}
	appCtx.SetTargetState(targetState, intent)
	s.dispatcher.Enqueue(dispatch.Request{AppId: appCtx.AppId, Target: targetState, Intent: intent})
	return nil
}

// UnloadApp sets the target to Terminating with force=false and enqueues
// (spec §6).
func (s *Service) UnloadApp(instanceId lifecycle.AppInstanceId) error {
	return s.terminate(instanceId, false)
}

// KillApp sets the target to Terminating with force=true and enqueues
// (spec §6).
func (s *Service) KillApp(instanceId lifecycle.AppInstanceId) error {
	return s.terminate(instanceId, true)
}

func (s *Service) terminate(instanceId lifecycle.AppInstanceId, force bool) error {
	appCtx, ok := s.registry.Find(lifecycle.ByAppInstanceId, string(instanceId))
	if !ok {
		return errs.New(errs.InvalidArgument, "unknown instance id %q", instanceId)
	}
	intent := appCtx.MostRecentIntent()
	appCtx.SetKillForce(force)
	appCtx.SetTargetState(lifecycle.Terminating, intent)
	s.dispatcher.Enqueue(dispatch.Request{AppId: appCtx.AppId, Target: lifecycle.Terminating, Intent: intent, KillForce: force})
	return nil
}

// SendIntentToActiveApp checks that the instance is reachable through the
// runtime collaborator's GetInfo and, on success, stores intent on the
// context. The intent itself is not sent to any collaborator, and the
// app's current state is not checked.
func (s *Service) SendIntentToActiveApp(ctx context.Context, instanceId lifecycle.AppInstanceId, intent string) error {
	appCtx, ok := s.registry.Find(lifecycle.ByAppInstanceId, string(instanceId))
	if !ok {
		return errs.New(errs.InvalidArgument, "unknown instance id %q", instanceId)
	}
	if _, err := s.runtimeAdapter.GetInfo(ctx, instanceId); err != nil {
		return errs.Wrap(errs.ActionFailed, err, "confirming %s is reachable before sending intent", instanceId)
	}
	appCtx.SetIntent(intent)
	return nil
}

// IsAppLoaded reports whether a context exists for appId (spec §6).
func (s *Service) IsAppLoaded(appId lifecycle.AppId) bool {
	return s.registry.Exists(appId)
}

// AppReady posts the app_ready gate for appId, the external readiness
// signal from the app runtime (spec §6).
func (s *Service) AppReady(appId lifecycle.AppId) error {
	appCtx, ok := s.registry.Find(lifecycle.ByAppId, string(appId))
	if !ok {
		return errs.New(errs.InvalidArgument, "unknown app id %q", appId)
	}
	appCtx.PostAppReady()
	return nil
}

// CloseApp kills the app, then if reason calls for it waits for the old
// context to fully tear down and re-spawns the app from its stored
// launch parameters targeting Paused or Active (spec §6). The wait
// matters: SpawnApp's GetOrCreate returns the same context KillApp just
// targeted for Terminating until the dispatcher's worker has actually
// driven it through Terminating -> Unloaded and dropped it from the
// registry, so spawning without waiting would hand the respawned app the
// same AppInstanceId as the one being killed -- violating the distinct
// second-instance guarantee spec §8's kill-and-restart scenario requires.
func (s *Service) CloseApp(ctx context.Context, appId lifecycle.AppId, reason CloseReason) (lifecycle.AppInstanceId, error) {
	appCtx, ok := s.registry.Find(lifecycle.ByAppId, string(appId))
	if !ok {
		return "", errs.New(errs.InvalidArgument, "unknown app id %q", appId)
	}
	lp := appCtx.LaunchParams()

	if err := s.KillApp(appCtx.InstanceId()); err != nil {
		return "", err
	}

	if reason == CloseKill {
		return "", nil
	}

	if err := s.waitForTeardown(ctx, appId); err != nil {
		return "", err
	}

	switch reason {
	case CloseKillAndRun:
		rc, _ := lp.RuntimeConfig.(lifecycle.RuntimeConfig)
		return s.SpawnApp(ctx, appId, lp.Intent, lifecycle.Paused, rc, lp.Args)
	case CloseKillAndActivate:
		rc, _ := lp.RuntimeConfig.(lifecycle.RuntimeConfig)
		return s.SpawnApp(ctx, appId, lp.Intent, lifecycle.Active, rc, lp.Args)
	default:
		return "", nil
	}
}

// teardownPollInterval paces waitForTeardown's poll for the registry to
// drop the old context. No seventh sync gate exists for "dropped from
// registry" (spec §3 names exactly six) -- and app_terminating itself
// can't be waited on a second time here, since it is a single-producer/
// single-consumer gate the dispatcher's own Terminating step already
// consumes (spec §5) -- so this polls the registry directly, bounded by
// a deadline, instead of blocking on a gate.
const teardownPollInterval = 5 * time.Millisecond

// waitForTeardown blocks until appId's old context has been dropped from
// the registry (i.e. the dispatcher has driven it all the way through
// Terminating -> Unloaded), or ctx/the collaborator deadline expires
// first.
func (s *Service) waitForTeardown(ctx context.Context, appId lifecycle.AppId) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.collab.GateDeadline)
	defer cancel()

	for {
		if !s.registry.Exists(appId) {
			return nil
		}
		select {
		case <-waitCtx.Done():
			return errs.Wrap(errs.Timeout, waitCtx.Err(), "waiting for %s to drop from the registry while closing", appId)
		case <-time.After(teardownPollInterval):
		}
	}
}

// RegisterLifecycleObserver / UnregisterLifecycleObserver /
// RegisterStateObserver / UnregisterStateObserver implement spec §6's
// Register/Unregister operations per §4.7.
func (s *Service) RegisterLifecycleObserver(o events.LifecycleObserver) {
	s.fanout.RegisterLifecycle(o)
}

func (s *Service) UnregisterLifecycleObserver(o events.LifecycleObserver) error {
	return s.fanout.UnregisterLifecycle(o)
}

func (s *Service) RegisterStateObserver(o events.StateObserver) {
	s.fanout.RegisterState(o)
}

func (s *Service) UnregisterStateObserver(o events.StateObserver) error {
	return s.fanout.UnregisterState(o)
}
