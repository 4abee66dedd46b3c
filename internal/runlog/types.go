package runlog

import "time"

// #region event-types
// Event types.
const (
	EventEvolutionStart    = "evolution_start"
	EventPromotion         = "promotion"
	EventRejection         = "rejection"
	EventRollback          = "rollback"
	EventError             = "error"
	EventEvolutionComplete = "evolution_complete"
)

// #endregion event-types

// #region event
// Event is one append-only log record.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	RunID     string         `json:"runId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// #endregion event

// #region run-summary
// RunSummary is one record per completed run, manual or online.
type RunSummary struct {
	RunID         string    `json:"runId"`
	Mode          string    `json:"mode"` // "online" | "manual"
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	DurationMs    int64     `json:"durationMs"`
	TrainSize     int       `json:"trainSize"`
	HoldoutSize   int       `json:"holdoutSize"`
	Promoted      bool      `json:"promoted"`
	Reason        string    `json:"reason"`
	ChampionID    string    `json:"championId"`
	AggregateLift float64   `json:"aggregateLift"`
	SafetyDrop    float64   `json:"safetyDrop"`
	SuccessDrop   float64   `json:"successDrop"`
	PolicyDiff    []string  `json:"policyDiff,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Run modes.
const (
	ModeOnline = "online"
	ModeManual = "manual"
)

// #endregion run-summary
