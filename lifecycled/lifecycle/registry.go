package lifecycle

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
)

// IdKind selects which of an AppContext's two identities Find looks up by.
type IdKind int

const (
	ByAppId IdKind = iota
	ByAppInstanceId
)

// Snapshot is a point-in-time, lock-free copy of one AppContext's fields,
// returned by Registry.List (spec §4.1's list() contract) and by
// GetLoadedApps (spec §6).
type Snapshot struct {
	AppId             AppId
	AppInstanceId     AppInstanceId
	CurrentState      State
	TargetState       State
	LastStateChangeAt time.Time
	StateChangeId     uint64
	MostRecentIntent  string
}

// Registry owns the mapping AppId -> AppContext. Expected cardinality is
// small (tens of apps), so a linear scan is acceptable for lookup by
// either key (spec §4.1).
type Registry struct {
	mu    sync.Mutex
	byApp map[AppId]*AppContext
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byApp: make(map[AppId]*AppContext)}
}

// GetOrCreate returns the existing context for id, or creates a new one in
// the Unloaded state if absent.
func (r *Registry) GetOrCreate(id AppId) *AppContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx, ok := r.byApp[id]; ok {
		return ctx
	}
	ctx := newAppContext(id)
	r.byApp[id] = ctx
	return ctx
}

// Find looks a context up by either AppId or AppInstanceId, whichever
// idKind selects. Lookup by either key succeeds in one linear pass.
func (r *Registry) Find(idKind IdKind, id string) (*AppContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch idKind {
	case ByAppId:
		ctx, ok := r.byApp[AppId(id)]
		return ctx, ok
	case ByAppInstanceId:
		for _, ctx := range r.byApp {
			if string(ctx.InstanceId()) == id {
				return ctx, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// Exists reports whether a context exists for the given AppId (spec §6's
// IsAppLoaded).
func (r *Registry) Exists(id AppId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byApp[id]
	return ok
}

// AssignInstanceId generates a fresh globally-unique identifier for ctx.
// It fails if ctx already has one assigned (spec §4.1).
func (r *Registry) AssignInstanceId(ctx *AppContext) (AppInstanceId, error) {
	if ctx.InstanceId() != "" {
		return "", errs.New(errs.InvalidArgument, "app %q already has an instance id assigned", ctx.AppId)
	}
	id := AppInstanceId(uuid.NewString())
	ctx.setInstanceId(id)
	return id, nil
}

// DropIfTerminal removes ctx from the registry when its current state is
// Unloaded and that state was reached via Terminating (spec §4.1). The
// caller (the dispatcher, after executing the last planned step) is
// responsible for knowing whether the Unloaded it just applied came from
// Terminating; DropIfTerminal trusts that signal via the viaTerminating
// argument rather than re-deriving it.
func (r *Registry) DropIfTerminal(ctx *AppContext, viaTerminating bool) {
	if !viaTerminating || ctx.CurrentState() != Unloaded {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byApp, ctx.AppId)
}

// List returns a snapshot of every context currently in the registry,
// ordered by AppId for determinism.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	ctxs := make([]*AppContext, 0, len(r.byApp))
	for _, ctx := range r.byApp {
		ctxs = append(ctxs, ctx)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(ctxs))
	for _, ctx := range ctxs {
		out = append(out, Snapshot{
			AppId:             ctx.AppId,
			AppInstanceId:     ctx.InstanceId(),
			CurrentState:      ctx.CurrentState(),
			TargetState:       ctx.TargetState(),
			LastStateChangeAt: ctx.LastStateChangeAt(),
			StateChangeId:     ctx.StateChangeId(),
			MostRecentIntent:  ctx.MostRecentIntent(),
		})
	}
	sortSnapshots(out)
	return out
}

func sortSnapshots(s []Snapshot) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].AppId > s[j].AppId; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
