package arg

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/fennwick/murmur/internal/engine"
	"github.com/fennwick/murmur/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check if murmur is running and what it is doing",
	Run: func(cmd *cobra.Command, args []string) {
		obj, done, err := manager()
		if err != nil {
			log.Fatal(err)
		}
		defer done()

		var result string
		if err := obj.Call(ipc.InterfaceName+".GetStatus", 0).Store(&result); err != nil {
			log.Fatal("Failed to call method:", err)
		}

		var status engine.StatusReport
		if err := json.Unmarshal([]byte(result), &status); err != nil {
			log.Fatal("Failed to parse response:", err)
		}

		fmt.Println("Phase:", status.Phase)
		if status.Paused {
			fmt.Println("Paused: yes")
		}
		if !status.Until.IsZero() {
			fmt.Printf("Until: %s (%s from now)\n",
				status.Until.Format(time.RFC3339),
				time.Until(status.Until).Round(time.Second))
		}
		if last := status.LastSession; last != nil {
			fmt.Printf("Last session: %s (%s, %s)\n", last.ID, last.Status, last.Reason)
			fmt.Printf("  items=%d actions=%d rejected=%d review=%d skipped=%d retries=%d\n",
				last.Counters.ItemsProcessed, last.Counters.ActionsTaken,
				last.Counters.Rejected, last.Counters.ReviewBand,
				last.Counters.Skipped, last.Counters.Retries)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
