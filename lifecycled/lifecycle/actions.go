package lifecycle

import (
	"context"
	"fmt"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
)

// enter executes the side effects attached to entering state s on behalf
// of ctx, per each state's contract in spec §4.4. It is called once per
// planned step by the dispatcher's worker goroutine, strictly after the
// previous step in the plan has itself completed. The previous state
// (ctx.CurrentState(), read before this call mutates anything) is what
// distinguishes the branches documented as "conditional on previous
// state".
func enter(ctx context.Context, appCtx *AppContext, target State, killForce bool, collab Collaborators) error {
	from := appCtx.CurrentState()

	switch target {
	case Unloaded:
		return enterUnloaded(ctx, appCtx, collab)
	case Loading:
		return enterLoading(ctx, appCtx, collab)
	case Initializing:
		return enterInitializing(ctx, appCtx, collab)
	case Paused:
		return enterPaused(ctx, appCtx, from, collab)
	case Active:
		return enterActive(ctx, appCtx, collab)
	case Suspended:
		return enterSuspended(ctx, appCtx, from, collab)
	case Hibernated:
		return enterHibernated(ctx, appCtx, collab)
	case Terminating:
		return enterTerminating(ctx, appCtx, killForce, collab)
	default:
		return errs.New(errs.InvalidArgument, "unknown target state %d", target)
	}
}

// enterUnloaded has no side effects: there is no collaborator call
// attached to either the initial Unloaded state or the implicit
// Terminating -> Unloaded step (spec §4.4).
func enterUnloaded(_ context.Context, _ *AppContext, _ Collaborators) error {
	return nil
}

// enterLoading signals reached_loading once the registry has assigned the
// app its instance id (spec §4.4). Assignment itself happens in the
// Registry, ahead of this call, since only the Registry may mint instance
// ids; Loading's action is just the readiness signal that follows.
func enterLoading(_ context.Context, appCtx *AppContext, _ Collaborators) error {
	appCtx.PostReachedLoading()
	return nil
}

// enterInitializing builds the container spec exactly once per lifetime,
// then starts the container and waits for app_running (spec §4.4). A
// retry of this step (if a later step in a different transition fails and
// Initializing is re-entered) must not rebuild the spec, hence
// MarkSpecBuilt's "already built" short-circuit.
func enterInitializing(ctx context.Context, appCtx *AppContext, collab Collaborators) error {
	lp := appCtx.LaunchParams()

	if already := appCtx.MarkSpecBuilt(); !already {
		rc, _ := lp.RuntimeConfig.(RuntimeConfig)
		spec, err := collab.BuildSpec(appCtx.AppId, rc)
		if err != nil {
			return errs.Wrap(errs.ActionFailed, err, "build container spec for %s", appCtx.AppId)
		}
		if err := collab.Runtime.Run(ctx, appCtx.InstanceId(), spec); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "start container for %s", appCtx.AppId)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, collab.gateDeadline())
	defer cancel()
	if err := appCtx.WaitAppRunning(waitCtx); err != nil {
		return errs.Wrap(errs.Timeout, err, "waiting for app_running on %s", appCtx.AppId)
	}
	return nil
}

// enterPaused's side effect depends on which state the app is being
// paused from (spec §4.4): arriving from Initializing is the implicit
// post-launch quiescent state and needs no collaborator call beyond what
// Initializing already did; arriving from Suspended calls Runtime.Resume
// then enables rendering; arriving from Active needs no collaborator
// call either. WaitForAppReadyOnPause additionally waits for app_ready
// when set, matching the commented-out wait in the source this was
// distilled from.
func enterPaused(ctx context.Context, appCtx *AppContext, from State, collab Collaborators) error {
	switch from {
	case Initializing, Active:
		// no-op: spec §4.4 attaches no collaborator call to either
		// predecessor.
	case Suspended:
		if err := collab.Runtime.Resume(ctx, appCtx.InstanceId()); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "resume container for %s", appCtx.AppId)
		}
		if err := collab.Display.EnableRender(ctx, appCtx.InstanceId(), true); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "enable render for %s", appCtx.AppId)
		}
	default:
		return errs.New(errs.ActionFailed, "unreachable Paused predecessor %s for %s", from, appCtx.AppId)
	}

	if collab.WaitForAppReadyOnPause {
		waitCtx, cancel := context.WithTimeout(ctx, collab.gateDeadline())
		defer cancel()
		if err := appCtx.WaitAppReady(waitCtx); err != nil {
			return errs.Wrap(errs.Timeout, err, "waiting for app_ready on %s", appCtx.AppId)
		}
	}
	return nil
}

// enterActive queries render readiness and waits for the first_frame
// gate, confirming the app is actually presenting before the transition
// is considered complete (spec §4.4).
func enterActive(ctx context.Context, appCtx *AppContext, collab Collaborators) error {
	ready, err := collab.Display.RenderReady(ctx, appCtx.InstanceId())
	if err != nil {
		return errs.Wrap(errs.ActionFailed, err, "query render readiness for %s", appCtx.AppId)
	}
	if !ready {
		waitCtx, cancel := context.WithTimeout(ctx, collab.gateDeadline())
		defer cancel()
		if err := appCtx.WaitFirstFrame(waitCtx); err != nil {
			return errs.Wrap(errs.Timeout, err, "waiting for first_frame on %s", appCtx.AppId)
		}
	}
	return nil
}

// enterSuspended's side effect depends on the predecessor (spec §4.4):
// waking from Hibernated calls Runtime.Wake (passing the state the app is
// being woken towards so the collaborator can restore the right
// checkpoint); arriving from Initializing or Paused calls Runtime.Suspend
// and disables rendering.
func enterSuspended(ctx context.Context, appCtx *AppContext, from State, collab Collaborators) error {
	switch from {
	case Hibernated:
		if err := collab.Runtime.Wake(ctx, appCtx.InstanceId(), Suspended); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "wake container for %s", appCtx.AppId)
		}
	case Initializing, Paused:
		if err := collab.Runtime.Suspend(ctx, appCtx.InstanceId()); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "suspend container for %s", appCtx.AppId)
		}
		if err := collab.Display.EnableRender(ctx, appCtx.InstanceId(), false); err != nil {
			return errs.Wrap(errs.ActionFailed, err, "disable render for %s", appCtx.AppId)
		}
	default:
		return errs.New(errs.ActionFailed, "unreachable Suspended predecessor %s for %s", from, appCtx.AppId)
	}
	return nil
}

// enterHibernated checkpoints the container to persistent storage and
// frees its runtime resources (spec §4.4).
func enterHibernated(ctx context.Context, appCtx *AppContext, collab Collaborators) error {
	if err := collab.Runtime.Hibernate(ctx, appCtx.InstanceId(), ""); err != nil {
		return errs.Wrap(errs.ActionFailed, err, "hibernate container for %s", appCtx.AppId)
	}
	return nil
}

// enterTerminating tears the container down -- a hard Kill if killForce
// was set on the request that drove this step, otherwise a graceful
// Terminate -- then waits for the collaborator's app_terminating
// acknowledgement before the Unloaded step that always follows it is
// applied (spec §4.4). killForce is the value captured on the
// dispatch.Request at enqueue time, not a mutable AppContext field: the
// original's StateTransitionRequest carries the same flag by value
// (StateTransitionRequest.h) so a later caller can never flip the force
// flag on a kill that is already queued.
func enterTerminating(ctx context.Context, appCtx *AppContext, killForce bool, collab Collaborators) error {
	var err error
	if killForce {
		err = collab.Runtime.Kill(ctx, appCtx.InstanceId())
	} else {
		err = collab.Runtime.Terminate(ctx, appCtx.InstanceId())
	}
	if err != nil {
		return errs.Wrap(errs.ActionFailed, err, "terminate container for %s", appCtx.AppId)
	}

	waitCtx, cancel := context.WithTimeout(ctx, collab.gateDeadline())
	defer cancel()
	if err := appCtx.WaitAppTerminating(waitCtx); err != nil {
		return errs.Wrap(errs.Timeout, err, "waiting for app_terminating on %s", appCtx.AppId)
	}
	return nil
}

// Enter is the package-exported entry point the dispatcher calls for
// every planned step. It exists so dispatch need not reach into
// lifecycle's unexported per-state functions directly. killForce is
// ignored by every target except Terminating; the dispatcher threads it
// through from the dispatch.Request that is driving the current plan,
// rather than this call reading it back off appCtx.
func Enter(ctx context.Context, appCtx *AppContext, target State, killForce bool, collab Collaborators) error {
	if !target.Valid() {
		return errs.New(errs.InvalidArgument, "invalid target state %d", target)
	}
	if err := enter(ctx, appCtx, target, killForce, collab); err != nil {
		return fmt.Errorf("entering %s for %s: %w", target, appCtx.AppId, err)
	}
	return nil
}
