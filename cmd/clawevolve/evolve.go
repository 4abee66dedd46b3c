package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawevolve/controller/internal/orchestrator"
)

var (
	evolveAddr        string
	evolveGenerations int
	evolvePopulation  int
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Start a manual evolution run on the running controller",
	Long: `evolve asks the running controller for an immediate run, bypassing the
online schedule. If a run is already in flight the request joins it and
reports that run's outcome. Blocks until the run completes.`,
	RunE: runEvolve,
}

func init() {
	evolveCmd.Flags().StringVar(&evolveAddr, "addr", "http://localhost:8092", "Controller web address")
	evolveCmd.Flags().IntVar(&evolveGenerations, "generations", 0, "Override search generations (0 = configured default)")
	evolveCmd.Flags().IntVar(&evolvePopulation, "population", 0, "Override population size (0 = configured default)")
	rootCmd.AddCommand(evolveCmd)
}

func runEvolve(cmd *cobra.Command, _ []string) error {
	body, err := json.Marshal(orchestrator.EvolveOverrides{
		Generations:    evolveGenerations,
		PopulationSize: evolvePopulation,
	})
	if err != nil {
		return err
	}

	// Manual runs wait on the optimizer, so no client timeout here.
	resp, err := http.Post(evolveAddr+"/v1/evolve", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	defer resp.Body.Close()

	var summary map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return fmt.Errorf("decode run summary: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("run failed (%s): %v", resp.Status, summary["error"])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
