// Package state defines the persisted snapshot schema for the controller
// and the SQLite store that holds snapshots and the durable event log.
// The snapshot is an explicit versioned contract rather than a generic
// deep clone of in-memory state.
package state

import (
	"encoding/json"
	"time"

	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// SchemaVersion identifies the snapshot wire format.
const SchemaVersion = 1

// #region snapshot
// Snapshot is a self-contained copy of all mutable controller state.
// The in-flight run marker is deliberately not part of the schema: a
// restored process always starts idle.
type Snapshot struct {
	SchemaVersion     int                    `json:"schemaVersion"`
	CapturedAt        time.Time              `json:"capturedAt"`
	Trajectories      []telemetry.Trajectory `json:"trajectories,omitempty"`
	Champion          *policy.Genome         `json:"champion,omitempty"`
	PreviousChampion  *policy.Genome         `json:"previousChampion,omitempty"`
	BaselineEval      *eval.Evaluation       `json:"baselineEvaluation,omitempty"`
	LastEvolutionAt   time.Time              `json:"lastEvolutionAt,omitempty"`
	LastEvolutionLen  int                    `json:"lastEvolutionTrajectoryCount,omitempty"`
	Events            []runlog.Event         `json:"events,omitempty"`
	RunHistory        []runlog.RunSummary    `json:"runHistory,omitempty"`
}

// #endregion snapshot

// #region bounds
// Bounds carries the configured caps re-applied to a snapshot on load.
type Bounds struct {
	WindowSize    int
	EventLogCap   int
	RunHistoryCap int
}

// #endregion bounds

// #region decode
// Decode parses a persisted snapshot defensively: each top-level field is
// decoded independently, and a field that is absent or of the wrong shape
// falls back to its zero value instead of aborting the restore.
func Decode(data []byte) Snapshot {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{SchemaVersion: SchemaVersion}
	}

	var s Snapshot
	field(raw, "schemaVersion", &s.SchemaVersion)
	field(raw, "capturedAt", &s.CapturedAt)
	field(raw, "trajectories", &s.Trajectories)
	field(raw, "champion", &s.Champion)
	field(raw, "previousChampion", &s.PreviousChampion)
	field(raw, "baselineEvaluation", &s.BaselineEval)
	field(raw, "lastEvolutionAt", &s.LastEvolutionAt)
	field(raw, "lastEvolutionTrajectoryCount", &s.LastEvolutionLen)
	field(raw, "events", &s.Events)
	field(raw, "runHistory", &s.RunHistory)
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SchemaVersion
	}
	return s
}

// field decodes one raw field, leaving the target untouched on error.
func field[T any](raw map[string]json.RawMessage, key string, dst *T) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return
	}
	*dst = v
}

// #endregion decode

// #region sanitize
// Sanitize re-applies invariants to a decoded snapshot: arrays truncated
// to their configured bounds (oldest dropped), genome fields clamped, and
// the previousChampion/baseline pair kept all-or-nothing.
func Sanitize(s Snapshot, b Bounds) Snapshot {
	if b.WindowSize > 0 && len(s.Trajectories) > b.WindowSize {
		s.Trajectories = s.Trajectories[len(s.Trajectories)-b.WindowSize:]
	}
	if b.EventLogCap > 0 && len(s.Events) > b.EventLogCap {
		s.Events = s.Events[len(s.Events)-b.EventLogCap:]
	}
	if b.RunHistoryCap > 0 && len(s.RunHistory) > b.RunHistoryCap {
		s.RunHistory = s.RunHistory[len(s.RunHistory)-b.RunHistoryCap:]
	}

	if s.Champion != nil {
		if s.Champion.ID == "" {
			s.Champion = nil
		} else {
			clamped := policy.Clamp(*s.Champion)
			s.Champion = &clamped
		}
	}
	if s.PreviousChampion != nil && s.PreviousChampion.ID == "" {
		s.PreviousChampion = nil
	}

	// Rollback safety net is all-or-nothing.
	if s.PreviousChampion == nil || s.BaselineEval == nil || s.Champion == nil {
		s.PreviousChampion = nil
		s.BaselineEval = nil
	} else {
		clamped := policy.Clamp(*s.PreviousChampion)
		s.PreviousChampion = &clamped
	}
	return s
}

// #endregion sanitize

// #region encode
// Encode serializes a snapshot for persistence.
func Encode(s Snapshot) ([]byte, error) {
	s.SchemaVersion = SchemaVersion
	return json.Marshal(s)
}

// #endregion encode
