// Package notify sends best-effort desktop notifications for events the
// operator should see without tailing logs, such as challenge aborts.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Notifier posts to org.freedesktop.Notifications on the session bus.
// The zero value is unusable; use New.
type Notifier struct {
	conn *dbus.Conn
}

// New connects to the session bus. The daemon runs as the desktop user,
// so no cross-session plumbing is needed.
func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{conn: conn}, nil
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
	return n.conn.Close()
}

// Send posts a notification. Failures are returned but callers are
// expected to log and move on; notifications never gate the session.
func (n *Notifier) Send(summary, body string) error {
	obj := n.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"murmur",          // app_name
		uint32(0),         // replaces_id
		"dialog-warning",  // app_icon
		summary,           // summary
		body,              // body
		[]string{},        // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(10000), // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
