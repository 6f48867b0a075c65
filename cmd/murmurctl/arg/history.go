package arg

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/fennwick/murmur/internal/ipc"
	"github.com/fennwick/murmur/internal/session"
)

var historyCount int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent session summaries",
	Run: func(cmd *cobra.Command, args []string) {
		obj, done, err := manager()
		if err != nil {
			log.Fatal(err)
		}
		defer done()

		var result string
		if err := obj.Call(ipc.InterfaceName+".GetHistory", 0, int32(historyCount)).Store(&result); err != nil {
			log.Fatal("Failed to call method:", err)
		}

		var entries []session.Summary
		if err := json.Unmarshal([]byte(result), &entries); err != nil {
			log.Fatal("Failed to parse response:", err)
		}

		if len(entries) == 0 {
			fmt.Println("No sessions recorded")
			return
		}

		for _, e := range entries {
			fmt.Printf("%s  %s  %-10s %s\n",
				e.StartedAt.Format("2006-01-02 15:04"),
				e.Duration().Round(time.Second),
				e.Status, e.ID)
			fmt.Printf("    items=%d actions=%d rejected=%d review=%d skipped=%d retries=%d\n",
				e.Counters.ItemsProcessed, e.Counters.ActionsTaken,
				e.Counters.Rejected, e.Counters.ReviewBand,
				e.Counters.Skipped, e.Counters.Retries)
			if e.Reason != "" {
				fmt.Printf("    reason: %s\n", e.Reason)
			}
		}
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "Number of sessions to show")
	rootCmd.AddCommand(historyCmd)
}
