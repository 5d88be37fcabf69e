// Package collab holds the shared dial/retry machinery used by every
// collaborator adapter (runtime, display, storage): each adapter is the
// sole path between the core and one external D-Bus service, and each
// survives that service restarting underneath it.
package collab

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
)

// reconnectAttempts and reconnectInterval match the adapters' contract
// ("reconnection ... attempted up to a small fixed retry count (2) with
// a short back-off (~200 ms)").
const (
	reconnectAttempts  = 2
	reconnectInterval  = 200 * time.Millisecond
)

// Conn wraps a single D-Bus connection to one collaborator's bus name,
// re-dialing it on demand when a call fails because the connection has
// gone away.
type Conn struct {
	busName string
	objPath dbus.ObjectPath
	log     *logrus.Entry

	mu   sync.Mutex
	conn *dbus.Conn
}

// Dial opens the initial connection to busName on the system bus. This is
// the sole place each adapter talks to the bus transport; everything
// above it deals only in the collaborator's typed methods.
func Dial(busName string, objPath dbus.ObjectPath, log *logrus.Entry) (*Conn, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Conn{busName: busName, objPath: objPath, log: log}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Conn) connect() error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return errs.Wrap(errs.CollaboratorUnavailable, err, "connecting to system bus for %s", c.busName)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// reconnect retries connect up to reconnectAttempts times with a constant
// back-off, exactly the shape of the teacher's waitForStopped retry loop
// (backoff.WithContext over a constant interval, bounded by ctx).
func (c *Conn) reconnect(ctx context.Context) error {
	boCtx := backoff.WithContext(backoff.NewConstantBackOff(reconnectInterval), ctx)
	attempt := 0
	op := func() error {
		attempt++
		if attempt > reconnectAttempts {
			return backoff.Permanent(fmt.Errorf("exhausted %d reconnect attempts", reconnectAttempts))
		}
		return c.connect()
	}
	if err := backoff.Retry(op, boCtx); err != nil {
		return errs.Wrap(errs.CollaboratorUnavailable, err, "reconnecting to %s", c.busName)
	}
	return nil
}

// Call invokes method on the collaborator's object, retrying once via
// reconnect if the underlying connection has gone stale.
func (c *Conn) Call(ctx context.Context, method string, ret any, args ...any) error {
	if err := c.call(method, ret, args...); err != nil {
		if rerr := c.reconnect(ctx); rerr != nil {
			return rerr
		}
		if err := c.call(method, ret, args...); err != nil {
			return errs.Wrap(errs.CollaboratorUnavailable, err, "calling %s on %s", method, c.busName)
		}
	}
	return nil
}

func (c *Conn) call(method string, ret any, args ...any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	obj := conn.Object(c.busName, c.objPath)
	call := obj.Call(c.busName+"."+method, 0, args...)
	if call.Err != nil {
		return call.Err
	}
	if ret != nil {
		return call.Store(ret)
	}
	return nil
}

// Subscribe registers a signal match on the collaborator's interface and
// returns the channel notifications arrive on, mirroring the adapters'
// "subscribe to collaborator notifications" responsibility.
func (c *Conn) Subscribe(ctx context.Context) (chan *dbus.Signal, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		if err := c.reconnect(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		conn = c.conn
		c.mu.Unlock()
	}
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(c.busName)); err != nil {
		return nil, errs.Wrap(errs.CollaboratorUnavailable, err, "subscribing to %s", c.busName)
	}
	ch := make(chan *dbus.Signal, 32)
	conn.Signal(ch)
	return ch, nil
}

// InterfaceName returns the bus name this Conn dials, which doubles as
// the D-Bus interface name every method and signal is namespaced under.
func (c *Conn) InterfaceName() string {
	return c.busName
}

// Close releases the underlying connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
