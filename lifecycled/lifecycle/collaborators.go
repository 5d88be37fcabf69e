package lifecycle

import (
	"context"
	"encoding/json"
	"time"
)

// RuntimeCollaborator is the typed client-side contract for the container
// runtime collaborator (spec §5/§6, C5). Every method is identified by
// app_instance_id, never by a long-lived pointer into the registry.
type RuntimeCollaborator interface {
	Run(ctx context.Context, instanceId AppInstanceId, spec json.RawMessage) error
	Suspend(ctx context.Context, instanceId AppInstanceId) error
	Resume(ctx context.Context, instanceId AppInstanceId) error
	Hibernate(ctx context.Context, instanceId AppInstanceId, options string) error
	Wake(ctx context.Context, instanceId AppInstanceId, toState State) error
	Terminate(ctx context.Context, instanceId AppInstanceId) error
	Kill(ctx context.Context, instanceId AppInstanceId) error
	GetInfo(ctx context.Context, instanceId AppInstanceId) (string, error)
}

// DisplayCollaborator is the typed client-side contract for the
// window/compositor collaborator (spec §5/§6, C6).
type DisplayCollaborator interface {
	EnableRender(ctx context.Context, instanceId AppInstanceId, enable bool) error
	RenderReady(ctx context.Context, instanceId AppInstanceId) (bool, error)
}

// PackageCollaborator is the typed client-side contract for per-app
// storage provisioning (spec §5/§6, C7). It is optional on the lifecycle
// path described here: no state action in §4.4 calls it directly, but it
// is wired so SPEC_FULL's storage-aware callers can use it.
type PackageCollaborator interface {
	CreateStorage(ctx context.Context, appId AppId, sizeKB int) (string, error)
	DeleteStorage(ctx context.Context, appId AppId) error
}

// SpecBuilderFunc builds the container spec for an app exactly once per
// lifetime (spec §4.4's Initializing.enter contract, C8). It is a function
// value rather than an interface method on Collaborators so that
// lifecycle -- the leaf package holding the state machine -- never needs
// to import the specbuilder or config packages; the Service composition
// root closes over both when it constructs Collaborators.
type SpecBuilderFunc func(appId AppId, rc RuntimeConfig) (json.RawMessage, error)

// Collaborators bundles everything a state action needs to perform its
// side effects, replacing the source's two process-wide singletons
// (RequestHandler::getInstance(), StateTransitionHandler::getInstance())
// with one value passed by reference (spec §9).
type Collaborators struct {
	Runtime RuntimeCollaborator
	Display DisplayCollaborator
	Storage PackageCollaborator

	BuildSpec SpecBuilderFunc

	// GateDeadline bounds every gate wait performed by a state action. The
	// spec recommends a 30s baseline, configurable (§5).
	GateDeadline time.Duration

	// WaitForAppReadyOnPause gates Paused.enter behind the app_ready
	// signal. The source comments this wait out; this core keeps it behind
	// a flag rather than guessing (spec §9's PausedState open question).
	WaitForAppReadyOnPause bool
}

func (c *Collaborators) gateDeadline() time.Duration {
	if c.GateDeadline <= 0 {
		return 30 * time.Second
	}
	return c.GateDeadline
}
