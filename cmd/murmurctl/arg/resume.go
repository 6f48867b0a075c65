package arg

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/fennwick/murmur/internal/ipc"
)

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Aliases: []string{"r"},
	Short:   "Resume a paused runner",
	Run: func(cmd *cobra.Command, args []string) {
		obj, done, err := manager()
		if err != nil {
			log.Fatal(err)
		}
		defer done()

		if err := obj.Call(ipc.InterfaceName+".Resume", 0).Store(); err != nil {
			log.Fatal("Failed to call method:", err)
		}

		fmt.Println("Runner resumed")
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
