package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawevolve/controller/internal/state"
)

var (
	inspectDB     string
	inspectEvents int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump snapshots and events from the state database",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDB, "db", "clawevolve.db", "Path to the state database")
	inspectCmd.Flags().IntVar(&inspectEvents, "events", 20, "Number of recent events to show")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	store, err := state.NewStore(inspectDB)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer store.Close()

	infos, err := store.ListSnapshots(10)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshots (%d):\n", len(infos))
	for _, info := range infos {
		marker := " "
		if info.Active {
			marker = "*"
		}
		fmt.Printf("  %s %s  v%d  %s\n", marker, info.SnapshotID, info.SchemaVersion,
			info.CreatedAt.Format(time.RFC3339))
	}

	snap, ok, err := store.LoadLatest()
	if err != nil {
		return err
	}
	if ok {
		champion := "none"
		if snap.Champion != nil {
			champion = snap.Champion.ID
		}
		fmt.Printf("\nActive snapshot: champion=%s window=%d runs=%d capturedAt=%s\n",
			champion, len(snap.Trajectories), len(snap.RunHistory),
			snap.CapturedAt.Format(time.RFC3339))
	} else {
		fmt.Println("\nNo active snapshot.")
	}

	events, err := store.RecentEvents(inspectEvents)
	if err != nil {
		return err
	}
	fmt.Printf("\nRecent events (%d):\n", len(events))
	for _, ev := range events {
		fmt.Printf("  %s  %-20s  run=%s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.RunID)
	}
	return nil
}
