// Package trigger decides whether conditions justify starting a new
// evolution run. Evaluation is a pure function of inputs; it never
// mutates controller state.
package trigger

import "time"

// #region reasons
// Blocking reasons, in priority order. The first applicable reason is the
// primary blocker, but Evaluate reports every reason that applies.
const (
	ReasonOnlineDisabled  = "online_disabled"
	ReasonInFlight        = "evolution_in_flight"
	ReasonWaitingMinTrajs = "waiting_min_trajectories"
	ReasonWaitingInterval = "waiting_interval"
	ReasonCooldown        = "cooldown"
)

// #endregion reasons

// #region types
// Input captures everything readiness depends on.
type Input struct {
	Enabled         bool
	InFlight        bool
	TrajectoryCount int
	MinTrajectories int
	SinceLastRun    int // trajectories ingested since the last completed run
	EvolveEvery     int
	LastEvolutionAt time.Time // zero if no run has completed
	Cooldown        time.Duration
	Now             time.Time
}

// Status is the derived readiness decision.
type Status struct {
	Ready           bool     `json:"ready"`
	Reasons         []string `json:"reasons,omitempty"` // ordered, primary first
	TrajectoryCount int      `json:"trajectoryCount"`
	SinceLastRun    int      `json:"sinceLastRun"`
	CooldownLeft    int64    `json:"cooldownLeftMs"`
}

// #endregion types

// #region evaluate
// Evaluate computes readiness. Ready iff no blocking reason applies.
func Evaluate(in Input) Status {
	st := Status{
		TrajectoryCount: in.TrajectoryCount,
		SinceLastRun:    in.SinceLastRun,
	}

	if !in.Enabled {
		st.Reasons = append(st.Reasons, ReasonOnlineDisabled)
	}
	if in.InFlight {
		st.Reasons = append(st.Reasons, ReasonInFlight)
	}
	if in.TrajectoryCount < in.MinTrajectories {
		st.Reasons = append(st.Reasons, ReasonWaitingMinTrajs)
	}
	if in.SinceLastRun < in.EvolveEvery {
		st.Reasons = append(st.Reasons, ReasonWaitingInterval)
	}
	if !in.LastEvolutionAt.IsZero() {
		elapsed := in.Now.Sub(in.LastEvolutionAt)
		if elapsed < in.Cooldown {
			st.Reasons = append(st.Reasons, ReasonCooldown)
			st.CooldownLeft = (in.Cooldown - elapsed).Milliseconds()
		}
	}

	st.Ready = len(st.Reasons) == 0
	return st
}

// #endregion evaluate
