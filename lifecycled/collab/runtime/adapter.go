// Package runtime implements the C5 Runtime Collaborator adapter: the
// sole path between the core and the external container runtime
// service, reached over D-Bus.
package runtime

import (
	"context"
	"encoding/json"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

const objectPath dbus.ObjectPath = "/org/rdk/RuntimeManager"

// Adapter implements lifecycle.RuntimeCollaborator over D-Bus, grounded
// on the teacher's sandboxConnect/call/connError dial pattern generalized
// from a local subprocess control socket to a system-bus service.
type Adapter struct {
	conn     *collab.Conn
	registry *lifecycle.Registry
	log      *logrus.Entry
}

// New dials busName and returns a ready Adapter. registry is used by
// Listen to resolve instance ids in inbound notifications back to their
// AppContext.
func New(busName string, registry *lifecycle.Registry, log *logrus.Entry) (*Adapter, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	conn, err := collab.Dial(busName, objectPath, log)
	if err != nil {
		return nil, err
	}
	return &Adapter{conn: conn, registry: registry, log: log}, nil
}

func (a *Adapter) Run(ctx context.Context, instanceId lifecycle.AppInstanceId, spec json.RawMessage) error {
	return a.conn.Call(ctx, methodRun, nil, string(instanceId), string(spec))
}

func (a *Adapter) Suspend(ctx context.Context, instanceId lifecycle.AppInstanceId) error {
	return a.conn.Call(ctx, methodSuspend, nil, string(instanceId))
}

func (a *Adapter) Resume(ctx context.Context, instanceId lifecycle.AppInstanceId) error {
	return a.conn.Call(ctx, methodResume, nil, string(instanceId))
}

func (a *Adapter) Hibernate(ctx context.Context, instanceId lifecycle.AppInstanceId, options string) error {
	return a.conn.Call(ctx, methodHibernate, nil, string(instanceId), options)
}

func (a *Adapter) Wake(ctx context.Context, instanceId lifecycle.AppInstanceId, toState lifecycle.State) error {
	return a.conn.Call(ctx, methodWake, nil, string(instanceId), int(toState))
}

func (a *Adapter) Terminate(ctx context.Context, instanceId lifecycle.AppInstanceId) error {
	return a.conn.Call(ctx, methodTerminate, nil, string(instanceId))
}

func (a *Adapter) Kill(ctx context.Context, instanceId lifecycle.AppInstanceId) error {
	return a.conn.Call(ctx, methodKill, nil, string(instanceId))
}

func (a *Adapter) GetInfo(ctx context.Context, instanceId lifecycle.AppInstanceId) (string, error) {
	var info string
	err := a.conn.Call(ctx, methodGetInfo, &info, string(instanceId))
	return info, err
}

// Listen subscribes to the collaborator's notifications and translates
// each into an internal gate signal on the addressed AppContext, or (for
// the terminal unload notification) a registry drop, until ctx is
// cancelled (spec §4.7's "separate runtime-event consumer").
func (a *Adapter) Listen(ctx context.Context) error {
	signals, err := a.conn.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				a.handle(sig)
			}
		}
	}()
	return nil
}

func (a *Adapter) handle(sig *dbus.Signal) {
	if len(sig.Body) == 0 {
		return
	}
	instanceId, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	appCtx, ok := a.registry.Find(lifecycle.ByAppInstanceId, instanceId)
	if !ok {
		a.log.WithField("instanceId", instanceId).Debug("notification for unknown instance")
		return
	}

	switch sig.Name {
	case a.conn.InterfaceName() + "." + signalStarted:
		// Informational only (spec §4.4): app_running is posted from
		// onStateChanged(RUNNING), not from onStarted.
	case a.conn.InterfaceName() + "." + signalTerminated:
		appCtx.PostAppTerminating()
		a.registry.DropIfTerminal(appCtx, true)
	case a.conn.InterfaceName() + "." + signalStateChanged:
		if len(sig.Body) < 2 {
			return
		}
		state, ok := sig.Body[1].(int32)
		if !ok {
			return
		}
		if state == runtimeStateRunning {
			appCtx.PostAppRunning()
		}
	case a.conn.InterfaceName() + "." + signalFailure:
		a.log.WithField("instanceId", instanceId).Warn("runtime collaborator reported a failure")
	}
}
