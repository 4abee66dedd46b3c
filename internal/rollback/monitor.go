// Package rollback watches live performance of the current champion
// against its promotion-time baseline and decides when to revert.
package rollback

import (
	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// #region config
// Config holds the regression thresholds and evidence requirements.
type Config struct {
	Enabled          bool    `yaml:"enabled"`
	MonitorWindow    int     `yaml:"monitorWindow"` // most recent N trajectories examined
	MinSamples       int     `yaml:"minSamples"`    // minimum evidence before any decision
	MaxAggregateDrop float64 `yaml:"maxAggregateDrop"`
	MaxSafetyDrop    float64 `yaml:"maxSafetyDrop"`
}

// DefaultConfig returns the standard rollback thresholds.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		MonitorWindow:    50,
		MinSamples:       20,
		MaxAggregateDrop: 0.10,
		MaxSafetyDrop:    0.05,
	}
}

// #endregion config

// #region decision
// Decision is the outcome of one monitor cycle.
type Decision struct {
	Revert        bool            `json:"revert"`
	Skipped       bool            `json:"skipped"` // insufficient evidence this cycle
	AggregateDrop float64         `json:"aggregateDrop"`
	SafetyDrop    float64         `json:"safetyDrop"`
	SampleCount   int             `json:"sampleCount"`
	ChampionOnly  bool            `json:"championOnly"` // monitor set was the champion-tagged subset
	Live          eval.Evaluation `json:"live"`
}

// #endregion decision

// #region monitor
// Monitor evaluates the champion over the recent window.
type Monitor struct {
	config    Config
	evaluator *eval.Evaluator
}

// NewMonitor creates a monitor with the given thresholds and evaluator.
func NewMonitor(config Config, evaluator *eval.Evaluator) *Monitor {
	return &Monitor{config: config, evaluator: evaluator}
}

// Check runs one monitor cycle. recent is the window tail, oldest first.
// The champion-tagged subset is preferred when it carries enough samples;
// otherwise the full recent set is used. Below MinSamples the cycle is
// skipped rather than decided.
func (m *Monitor) Check(recent []telemetry.Trajectory, champion policy.Genome, baseline eval.Evaluation) Decision {
	if !m.config.Enabled {
		return Decision{Skipped: true}
	}
	if len(recent) > m.config.MonitorWindow {
		recent = recent[len(recent)-m.config.MonitorWindow:]
	}

	set := recent
	championOnly := false
	if tagged := filterByPolicy(recent, champion.ID); len(tagged) >= m.config.MinSamples {
		set = tagged
		championOnly = true
	}
	if len(set) < m.config.MinSamples {
		return Decision{Skipped: true, SampleCount: len(set)}
	}

	live := m.evaluator.Evaluate(champion, set)
	d := Decision{
		AggregateDrop: baseline.AggregateScore - live.AggregateScore,
		SafetyDrop:    baseline.Safety() - live.Safety(),
		SampleCount:   len(set),
		ChampionOnly:  championOnly,
		Live:          live,
	}
	d.Revert = d.AggregateDrop > m.config.MaxAggregateDrop || d.SafetyDrop > m.config.MaxSafetyDrop
	return d
}

func filterByPolicy(set []telemetry.Trajectory, policyID string) []telemetry.Trajectory {
	if policyID == "" {
		return nil
	}
	var out []telemetry.Trajectory
	for _, t := range set {
		if t.PolicyID == policyID {
			out = append(out, t)
		}
	}
	return out
}

// #endregion monitor
