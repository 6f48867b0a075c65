// Package ipc exposes the daemon's control surface on the session bus.
package ipc

import (
	"encoding/json"

	"github.com/godbus/dbus/v5"

	"github.com/fennwick/murmur/internal/engine"
	"github.com/fennwick/murmur/internal/history"
)

const (
	ObjectPath    = "/io/github/fennwick/murmur"
	InterfaceName = "io.github.fennwick.murmur.Manager"
	ServiceName   = "io.github.fennwick.murmur"
)

// Control is the object exported over D-Bus. Reports are serialized as
// JSON strings so the CLI and the daemon share the engine's types.
type Control struct {
	Runner  *engine.Runner
	History *history.Log
}

// GetStatus returns the runner's current phase as JSON.
func (c *Control) GetStatus() (string, *dbus.Error) {
	data, err := json.Marshal(c.Runner.Status())
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// Pause stops new sessions from starting. A running session is allowed
// to finish.
func (c *Control) Pause() *dbus.Error {
	c.Runner.Pause()
	return nil
}

// Resume lifts a pause.
func (c *Control) Resume() *dbus.Error {
	c.Runner.Resume()
	return nil
}

// GetHistory returns the last n session summaries as JSON, oldest first.
// n <= 0 returns everything.
func (c *Control) GetHistory(n int32) (string, *dbus.Error) {
	data, err := json.Marshal(c.History.Recent(int(n)))
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}
