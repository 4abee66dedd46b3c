package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openclaw/clawevolve/controller/internal/config"
	"github.com/openclaw/clawevolve/controller/internal/optimizer"
	"github.com/openclaw/clawevolve/controller/internal/orchestrator"
	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/state"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
	"github.com/openclaw/clawevolve/controller/internal/web"
)

// snapshotEvery is the ingest interval between periodic snapshot saves.
const snapshotEvery = 25

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the controller: ingest loop, web surface, online evolution",
	Long: `serve restores the latest snapshot, starts the web surface, and reads
trajectories as JSON lines from stdin. Each line is one completed
interaction outcome; the online trigger decides when evolution runs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	// Env overrides win over the file, secrets especially.
	cfg.DBPath = envOr("CLAWEVOLVE_DB", cfg.DBPath)
	cfg.OptimizerURL = envOr("CLAWEVOLVE_OPTIMIZER_URL", cfg.OptimizerURL)
	cfg.OptimizerToken = envOr("CLAWEVOLVE_OPTIMIZER_TOKEN", cfg.OptimizerToken)
	cfg.WebAddr = envOr("CLAWEVOLVE_WEB_ADDR", cfg.WebAddr)

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer store.Close()

	client := optimizer.NewClient(cfg.OptimizerURL, cfg.OptimizerToken, cfg.OptimizerTimeout)

	hub := web.NewHub()
	metrics := web.NewMetrics()
	storeSink := orchestrator.SinkFunc(func(ev runlog.Event) {
		if err := store.AppendEvent(ev); err != nil {
			log.Printf("[MAIN] persist event: %v", err)
		}
	})

	ctrl := orchestrator.New(cfg, client,
		orchestrator.WithSink(hub),
		orchestrator.WithSink(metrics),
		orchestrator.WithSink(storeSink),
	)

	if snap, ok, err := store.LoadLatest(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	} else if ok {
		ctrl.RestoreState(snap)
	} else {
		log.Println("[MAIN] no snapshot found, starting fresh")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(cfg.WebAddr, ctrl, hub, metrics)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Printf("[MAIN] web server: %v", err)
		}
	}()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.Healthy(healthCtx); err != nil {
		log.Printf("[MAIN] optimizer at %s not reachable yet: %v", cfg.OptimizerURL, err)
	}
	cancel()

	log.Printf("[MAIN] controller ready (db=%s optimizer=%s web=%s)", cfg.DBPath, cfg.OptimizerURL, cfg.WebAddr)
	log.Println("[MAIN] reading trajectories from stdin, one JSON object per line")

	go ingestLoop(ctx, ctrl, metrics, store)

	<-ctx.Done()
	saveSnapshot(ctrl, store)
	log.Println("[MAIN] shutdown complete")
	return nil
}

// ingestLoop reads JSON-line trajectories from stdin until EOF or cancel.
func ingestLoop(ctx context.Context, ctrl *orchestrator.Controller, metrics *web.Metrics, store *state.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var t telemetry.Trajectory
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			log.Printf("[MAIN] bad trajectory line: %v", err)
			continue
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Timestamp.IsZero() {
			t.Timestamp = time.Now().UTC()
		}

		st := ctrl.Ingest(t)
		metrics.ObserveIngest(st)

		count++
		if count%snapshotEvery == 0 {
			saveSnapshot(ctrl, store)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[MAIN] stdin: %v", err)
	}
}

func saveSnapshot(ctrl *orchestrator.Controller, store *state.Store) {
	if _, err := store.SaveSnapshot(ctrl.ExportState()); err != nil {
		log.Printf("[MAIN] save snapshot: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
