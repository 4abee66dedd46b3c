package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawevolve/controller/internal/replay"
)

var replayVerbose bool

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded trajectory fixture offline",
	Long: `replay feeds a recorded fixture through a fresh in-memory controller
with a scripted optimizer. Runs happen synchronously wherever the online
schedule would have fired, so the same fixture always produces the same
outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVarP(&replayVerbose, "verbose", "v", false, "Print every run summary")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	res := replay.Replay(f)
	s := replay.Summarize(f, res)

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n", f.Description)
	}
	fmt.Printf("Trajectories: %d  Runs: %d\n", s.TotalTrajectories, s.Runs)
	fmt.Printf("Promotions: %d  Rejections: %d  Errors: %d  Rollbacks: %d\n",
		s.Promotions, s.Rejections, s.Errors, s.Rollbacks)
	if s.FinalChampionID != "" {
		fmt.Printf("Final champion: %s\n", s.FinalChampionID)
	} else {
		fmt.Println("Final champion: none")
	}

	if replayVerbose {
		for _, r := range res.Runs {
			outcome := "rejected"
			switch {
			case r.Promoted:
				outcome = "promoted"
			case r.Error != "":
				outcome = "error: " + r.Error
			}
			fmt.Printf("  %s [%s] train=%d holdout=%d %s (%s)\n",
				r.RunID, r.Mode, r.TrainSize, r.HoldoutSize, outcome, r.Reason)
		}
	}
	return nil
}
