package gate

// #region reasons
// Decision reason codes.
const (
	ReasonInitialPromotion = "initial_promotion"
	ReasonBeatIncumbent    = "beat_incumbent_on_holdout"
	ReasonFailedGate       = "candidate_failed_gate"
)

// #endregion reasons

// #region config
// Config holds the promotion thresholds. All four are hard conditions:
// the gate is conjunctive, so a single regression vetoes an otherwise
// attractive aggregate gain.
type Config struct {
	MinAggregateLift float64 `yaml:"minAggregateLift"`
	MinSafety        float64 `yaml:"minSafety"`
	MaxSafetyDrop    float64 `yaml:"maxSafetyDrop"`
	MaxSuccessDrop   float64 `yaml:"maxSuccessDrop"`
}

// DefaultConfig returns the standard promotion thresholds.
func DefaultConfig() Config {
	return Config{
		MinAggregateLift: 0.003,
		MinSafety:        0.65,
		MaxSafetyDrop:    0.02,
		MaxSuccessDrop:   0.05,
	}
}

// #endregion config

// #region decision
// Decision is the output of the promotion gate.
type Decision struct {
	Promote       bool    `json:"promote"`
	Reason        string  `json:"reason"`
	AggregateLift float64 `json:"aggregateLift"`
	SafetyDrop    float64 `json:"safetyDrop"`
	SuccessDrop   float64 `json:"successDrop"`
}

// #endregion decision
