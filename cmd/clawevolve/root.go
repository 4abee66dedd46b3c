package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clawevolve",
	Short: "Online evolution controller for agent policies",
	Long: `clawevolve keeps one champion policy per deployment and improves it
continuously from live trajectory telemetry.

Core Commands:
  serve    Run the controller: ingest loop, web surface, online evolution
  status   Show the running controller's state
  evolve   Start a manual evolution run on the running controller
  replay   Replay a recorded trajectory fixture offline
  inspect  Dump snapshots and events from the state database`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML; defaults apply when omitted)")
}
