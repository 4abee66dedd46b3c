package telemetry

import "time"

// #region tool-call
// ToolCallOutcome records one tool invocation inside a trajectory.
type ToolCallOutcome struct {
	ToolName  string  `json:"toolName"`
	Success   bool    `json:"success"`
	LatencyMs float64 `json:"latencyMs"`
	RiskScore float64 `json:"riskScore"` // 0..1
}

// #endregion tool-call

// #region trajectory
// Trajectory is one completed interaction outcome. Immutable once ingested.
type Trajectory struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	Success         bool              `json:"success"`
	UserFeedback    float64           `json:"userFeedback"` // -1..1
	LatencyMs       float64           `json:"latencyMs"`
	CostUsd         *float64          `json:"costUsd,omitempty"`
	SafetyIncidents int               `json:"safetyIncidents"`
	ToolCalls       []ToolCallOutcome `json:"toolCalls,omitempty"`
	PolicyID        string            `json:"policyId,omitempty"` // genome that produced this outcome
	Prompt          string            `json:"prompt,omitempty"`   // diagnostics only
}

// #endregion trajectory
