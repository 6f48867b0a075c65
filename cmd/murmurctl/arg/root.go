package arg

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/fennwick/murmur/internal/ipc"
)

var rootCmd = &cobra.Command{
	Use:   "murmurctl",
	Short: "murmurctl is the command line tool for murmur",
	Long: `murmurctl allows you to interact with the murmur daemon via D-Bus.
			You can use it to query status, pause and resume the runner,
			and inspect past sessions.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// manager connects to the daemon's control object on the session bus.
// The returned cleanup closes the connection.
func manager() (dbus.BusObject, func(), error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))
	return obj, func() { conn.Close() }, nil
}
