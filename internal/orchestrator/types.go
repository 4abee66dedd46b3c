package orchestrator

import (
	"time"

	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/trigger"
)

// #region event-sink
// EventSink receives every emitted event, in append order. Implemented by
// the durable store and the web broadcast hub. A sink must not call back
// into the controller.
type EventSink interface {
	Emit(ev runlog.Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ev runlog.Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev runlog.Event) { f(ev) }

// #endregion event-sink

// #region overrides
// EvolveOverrides carries manual-run parameter overrides; zero values
// fall back to the configured defaults.
type EvolveOverrides struct {
	Generations    int `json:"generations,omitempty"`
	PopulationSize int `json:"populationSize,omitempty"`
}

// #endregion overrides

// #region run-handle
// runHandle is the single-flight marker. Joiners wait on done and then
// read summary/err; both are written exactly once before done closes.
type runHandle struct {
	runID       string
	mode        string
	generations int
	population  int
	done        chan struct{}
	summary     runlog.RunSummary
	err         error
}

// #endregion run-handle

// #region metrics
// WindowMetrics are simple aggregates over the recent window, computed on
// demand for the status surface.
type WindowMetrics struct {
	SampleCount     int     `json:"sampleCount"`
	SuccessRate     float64 `json:"successRate"`
	MeanFeedback    float64 `json:"meanFeedback"`
	MeanLatencyMs   float64 `json:"meanLatencyMs"`
	SafetyIncidents int     `json:"safetyIncidents"`
}

// #endregion metrics

// #region status
// Status is the read-only view of controller state.
type Status struct {
	ChampionID      string              `json:"championId,omitempty"`
	HasSafetyNet    bool                `json:"hasSafetyNet"`
	WindowLen       int                 `json:"windowLen"`
	WindowSize      int                 `json:"windowSize"`
	Trigger         trigger.Status      `json:"trigger"`
	RecentMetrics   WindowMetrics       `json:"recentMetrics"`
	LastRun         *runlog.RunSummary  `json:"lastRun,omitempty"`
	RecentEvents    []runlog.Event      `json:"recentEvents,omitempty"`
	LastEvolutionAt time.Time           `json:"lastEvolutionAt,omitempty"`
	InFlight        bool                `json:"inFlight"`
	InFlightRunID   string              `json:"inFlightRunId,omitempty"`
}

// #endregion status
