// Package split carves the trajectory window into train and holdout
// partitions. The split is temporal and deterministic: the most recent
// trajectories become the holdout so validation reflects the current
// regime rather than early window history.
package split

import "github.com/openclaw/clawevolve/controller/internal/telemetry"

// #region config
// Config holds the split parameters.
type Config struct {
	HoldoutRatio float64 `yaml:"holdoutRatio"` // 0..0.9
	MinHoldout   int     `yaml:"minHoldout"`
}

// DefaultConfig returns the standard split parameters.
func DefaultConfig() Config {
	return Config{HoldoutRatio: 0.2, MinHoldout: 5}
}

// #endregion config

// #region result
// Result is a train/holdout partition of the window.
type Result struct {
	Train   []telemetry.Trajectory
	Holdout []telemetry.Trajectory
}

// #endregion result

// #region temporal
// Temporal splits the window (oldest first). holdoutCount =
// max(min(len-1, minHoldout), floor(len*holdoutRatio)); when that is not
// positive everything is train and the holdout is empty.
func Temporal(window []telemetry.Trajectory, cfg Config) Result {
	n := len(window)
	holdoutCount := n - 1
	if cfg.MinHoldout < holdoutCount {
		holdoutCount = cfg.MinHoldout
	}
	if byRatio := int(float64(n) * cfg.HoldoutRatio); byRatio > holdoutCount {
		holdoutCount = byRatio
	}
	if holdoutCount <= 0 {
		return Result{Train: copyOf(window)}
	}
	return Result{
		Train:   copyOf(window[:n-holdoutCount]),
		Holdout: copyOf(window[n-holdoutCount:]),
	}
}

func copyOf(in []telemetry.Trajectory) []telemetry.Trajectory {
	if len(in) == 0 {
		return nil
	}
	out := make([]telemetry.Trajectory, len(in))
	copy(out, in)
	return out
}

// #endregion temporal
