// Package gate decides whether a candidate evaluation earns promotion
// over the incumbent. Pure decision function, no side effects.
package gate

import "github.com/openclaw/clawevolve/controller/internal/eval"

// #region gate
// Gate compares candidate vs incumbent evaluations on held-out data.
type Gate struct {
	config Config
}

// NewGate creates a gate with the given thresholds.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Evaluate decides promotion. incumbent is nil when no champion exists;
// in that case only the absolute safety floor applies.
func (g *Gate) Evaluate(candidate eval.Evaluation, incumbent *eval.Evaluation) Decision {
	if incumbent == nil {
		return Decision{
			Promote: candidate.Safety() >= g.config.MinSafety,
			Reason:  ReasonInitialPromotion,
		}
	}

	d := Decision{
		AggregateLift: candidate.AggregateScore - incumbent.AggregateScore,
		SafetyDrop:    incumbent.Safety() - candidate.Safety(),
		SuccessDrop:   incumbent.SuccessRate() - candidate.SuccessRate(),
	}

	d.Promote = d.AggregateLift >= g.config.MinAggregateLift &&
		candidate.Safety() >= g.config.MinSafety &&
		d.SafetyDrop <= g.config.MaxSafetyDrop &&
		d.SuccessDrop <= g.config.MaxSuccessDrop

	if d.Promote {
		d.Reason = ReasonBeatIncumbent
	} else {
		d.Reason = ReasonFailedGate
	}
	return d
}

// #endregion gate
