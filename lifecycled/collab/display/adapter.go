// Package display implements the C6 Display Collaborator adapter: the
// sole path between the core and the external window/compositor
// service.
package display

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

const objectPath dbus.ObjectPath = "/org/rdk/DisplayManager"

const (
	methodEnableRender = "EnableRender"
	methodRenderReady  = "RenderReady"
	methodCreate       = "CreateDisplay"
)

const (
	signalReady           = "OnReady"
	signalUserInactivity  = "OnUserInactivity"
	signalDisconnect      = "OnDisconnect"
)

// Adapter implements lifecycle.DisplayCollaborator over D-Bus, using the
// same dial/retry shape as the runtime adapter (collab.Conn), narrowed to
// the display collaborator's own method set (spec §4.8/§6).
type Adapter struct {
	conn     *collab.Conn
	registry *lifecycle.Registry
	log      *logrus.Entry
}

// New dials busName and returns a ready Adapter.
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

func (a *Adapter) EnableRender(ctx context.Context, instanceId lifecycle.AppInstanceId, enable bool) error {
	return a.conn.Call(ctx, methodEnableRender, nil, string(instanceId), enable)
}

func (a *Adapter) RenderReady(ctx context.Context, instanceId lifecycle.AppInstanceId) (bool, error) {
	var ready bool
	err := a.conn.Call(ctx, methodRenderReady, &ready, string(instanceId))
	return ready, err
}

// CreateDisplay provisions the display surface a newly-initializing app
// will render into, taking the same opaque JSON parameter document the
// collaborator contract describes (spec §6's create_display(params_json)).
func (a *Adapter) CreateDisplay(ctx context.Context, instanceId lifecycle.AppInstanceId, paramsJSON string) error {
	return a.conn.Call(ctx, methodCreate, nil, string(instanceId), paramsJSON)
}

// Listen subscribes to the collaborator's notifications, translating
// onReady into the first_frame / first_frame_after_resume gate signals
// (the display is the authority on when a frame is actually presented).
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
		return
	}

	switch sig.Name {
	case a.conn.InterfaceName() + "." + signalReady:
		if appCtx.CurrentState() == lifecycle.Suspended {
			appCtx.PostFirstFrameAfterResume()
		} else {
			appCtx.PostFirstFrame()
		}
	case a.conn.InterfaceName() + "." + signalUserInactivity, a.conn.InterfaceName() + "." + signalDisconnect:
		a.log.WithField("instanceId", instanceId).Debug("display collaborator notification")
	}
}
