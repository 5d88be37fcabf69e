// Package storage implements the C7 Package Collaborator adapter: the
// sole path between the core and per-app storage provisioning.
package storage

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

const objectPath dbus.ObjectPath = "/org/rdk/PackageManager"

const (
	methodCreateStorage = "CreateStorage"
	methodDeleteStorage = "DeleteStorage"
)

// Adapter implements lifecycle.PackageCollaborator over D-Bus, using the
// same dial/retry shape as the runtime adapter, narrowed to storage
// provisioning (spec §6's create_storage/delete_storage).
type Adapter struct {
	conn *collab.Conn
	log  *logrus.Entry
}

// New dials busName and returns a ready Adapter.
func New(busName string, log *logrus.Entry) (*Adapter, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	conn, err := collab.Dial(busName, objectPath, log)
	if err != nil {
		return nil, err
	}
	return &Adapter{conn: conn, log: log}, nil
}

func (a *Adapter) CreateStorage(ctx context.Context, appId lifecycle.AppId, sizeKB int) (string, error) {
	var path string
	err := a.conn.Call(ctx, methodCreateStorage, &path, string(appId), sizeKB)
	return path, err
}

func (a *Adapter) DeleteStorage(ctx context.Context, appId lifecycle.AppId) error {
	return a.conn.Call(ctx, methodDeleteStorage, nil, string(appId))
}
