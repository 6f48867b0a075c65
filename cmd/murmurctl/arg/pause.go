package arg

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/fennwick/murmur/internal/ipc"
)

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Aliases: []string{"p"},
	Short:   "Pause the runner",
	Long:    "Stop new sessions from starting. A session already running finishes on its own limits.",
	Run: func(cmd *cobra.Command, args []string) {
		obj, done, err := manager()
		if err != nil {
			log.Fatal(err)
		}
		defer done()

		if err := obj.Call(ipc.InterfaceName+".Pause", 0).Store(); err != nil {
			log.Fatal("Failed to call method:", err)
		}

		fmt.Println("Runner paused")
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
