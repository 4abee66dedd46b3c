// Package replay feeds recorded trajectory fixtures through a fresh
// controller with a scripted optimizer, entirely in-memory. A fixture
// replays identically every time, which makes it the tool of choice for
// validating gate and schedule behavior on captured production traffic.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/openclaw/clawevolve/controller/internal/config"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
// Candidates are handed out by the scripted optimizer in order, one per
// run; a run past the last candidate records an optimizer error.
type Fixture struct {
	Description  string                 `json:"description"`
	Config       FixtureConfig          `json:"config"`
	Trajectories []telemetry.Trajectory `json:"trajectories"`
	Candidates   []policy.Genome        `json:"candidates"`
}

// FixtureConfig mirrors the controller knobs a fixture may override.
// Zero values fall back to the standard defaults, except rollback, which
// stays off unless explicitly enabled.
type FixtureConfig struct {
	WindowSize      int `json:"windowSize"`
	MinTrajectories int `json:"minTrajectories"`
	EvolveEvery     int `json:"evolveEvery"`
	CooldownSeconds int `json:"cooldownSeconds"`

	HoldoutRatio float64 `json:"holdoutRatio"`
	MinHoldout   int     `json:"minHoldout"`

	MinAggregateLift float64 `json:"minAggregateLift"`
	MinSafety        float64 `json:"minSafety"`
	MaxSafetyDrop    float64 `json:"maxSafetyDrop"`
	MaxSuccessDrop   float64 `json:"maxSuccessDrop"`

	RollbackEnabled  bool    `json:"rollbackEnabled"`
	MonitorWindow    int     `json:"monitorWindow"`
	MinSamples       int     `json:"minSamples"`
	MaxAggregateDrop float64 `json:"maxAggregateDrop"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ControllerConfig maps the fixture overrides onto the standard defaults
// and forces the online trigger off so runs happen synchronously on the
// replay goroutine. Cooldown defaults to zero: replays have no wall
// clock to wait out.
func (fc FixtureConfig) ControllerConfig() config.Config {
	cfg := config.Default()
	cfg.OnlineEnabled = false
	cfg.Cooldown = time.Duration(fc.CooldownSeconds) * time.Second

	if fc.WindowSize > 0 {
		cfg.WindowSize = fc.WindowSize
	}
	if fc.MinTrajectories > 0 {
		cfg.MinTrajectories = fc.MinTrajectories
	}
	if fc.EvolveEvery > 0 {
		cfg.EvolveEvery = fc.EvolveEvery
	}
	if fc.HoldoutRatio > 0 {
		cfg.Split.HoldoutRatio = fc.HoldoutRatio
	}
	if fc.MinHoldout > 0 {
		cfg.Split.MinHoldout = fc.MinHoldout
	}
	if fc.MinAggregateLift > 0 {
		cfg.Gate.MinAggregateLift = fc.MinAggregateLift
	}
	if fc.MinSafety > 0 {
		cfg.Gate.MinSafety = fc.MinSafety
	}
	if fc.MaxSafetyDrop > 0 {
		cfg.Gate.MaxSafetyDrop = fc.MaxSafetyDrop
	}
	if fc.MaxSuccessDrop > 0 {
		cfg.Gate.MaxSuccessDrop = fc.MaxSuccessDrop
	}

	cfg.Rollback.Enabled = fc.RollbackEnabled
	if fc.MonitorWindow > 0 {
		cfg.Rollback.MonitorWindow = fc.MonitorWindow
	}
	if fc.MinSamples > 0 {
		cfg.Rollback.MinSamples = fc.MinSamples
	}
	if fc.MaxAggregateDrop > 0 {
		cfg.Rollback.MaxAggregateDrop = fc.MaxAggregateDrop
	}
	return cfg.Clamp()
}

// #endregion fixture-loader
