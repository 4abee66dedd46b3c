package eval

import (
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// #region evaluator
// Evaluator scores genomes against trajectory sets. Scoring is fully
// deterministic, so the same genome and set always produce the same
// Evaluation.
type Evaluator struct {
	weights Weights
}

// NewEvaluator creates an evaluator with the given objective weights.
func NewEvaluator(weights Weights) *Evaluator {
	return &Evaluator{weights: weights}
}

// Weights returns the configured objective weights.
func (e *Evaluator) Weights() Weights {
	return e.weights
}

// #endregion evaluator

// #region evaluate
// Evaluate scores a genome against a trajectory set: per-objective means
// plus the mean aggregate. An empty set yields a zero evaluation.
func (e *Evaluator) Evaluate(g policy.Genome, set []telemetry.Trajectory) Evaluation {
	out := Evaluation{
		Objectives: map[string]float64{
			ObjSuccessRate:     0,
			ObjSatisfaction:    0,
			ObjSafety:          0,
			ObjToolReliability: 0,
			ObjEfficiency:      0,
		},
		SampleCount: len(set),
	}
	if len(set) == 0 {
		return out
	}

	var aggSum float64
	for _, t := range set {
		scores := e.scoreTrajectory(g, t)
		out.Objectives[ObjSuccessRate] += scores.success
		out.Objectives[ObjSatisfaction] += scores.satisfaction
		out.Objectives[ObjSafety] += scores.safety
		out.Objectives[ObjToolReliability] += scores.toolReliability
		out.Objectives[ObjEfficiency] += scores.efficiency
		aggSum += scores.aggregate
	}
	n := float64(len(set))
	for k := range out.Objectives {
		out.Objectives[k] /= n
	}
	out.AggregateScore = aggSum / n
	return out
}

// #endregion evaluate

// #region per-trajectory
type trajectoryScores struct {
	success         float64
	satisfaction    float64
	safety          float64
	toolReliability float64
	efficiency      float64
	aggregate       float64
}

func (e *Evaluator) scoreTrajectory(g policy.Genome, t telemetry.Trajectory) trajectoryScores {
	var s trajectoryScores
	if t.Success {
		s.success = 1
	}
	s.satisfaction = clamp((t.UserFeedback+1)/2, 0, 1)
	s.safety = clamp(1-minF(1, float64(t.SafetyIncidents)/3), 0, 1)
	s.toolReliability = toolFitness(g, t.ToolCalls)

	costScore := 0.5 // neutral when cost is not reported
	if t.CostUsd != nil {
		costScore = normalizedCost(*t.CostUsd)
	}
	latencyScore := normalizedLatency(t.LatencyMs)
	s.efficiency = clamp((costScore+latencyScore)/2, 0, 1)

	// Discourage runaway deliberation and memory budgets; mildly prefer
	// balanced over concise over detailed styles.
	strategyPenalty := clamp(float64(g.DeliberationBudget)/10, 0, 0.3) +
		clamp(float64(g.MemoryDepth)/100, 0, 0.2)
	styleBonus := 0.05 * styleFactor(g.ResponseStyle)

	s.aggregate = clamp(
		e.weights.Success*s.success+
			e.weights.Satisfaction*s.satisfaction+
			e.weights.Safety*s.safety+
			e.weights.ToolReliability*s.toolReliability+
			e.weights.Efficiency*s.efficiency+
			styleBonus-strategyPenalty,
		0, 1)
	return s
}

// toolFitness scores the genome's tool routing against observed calls.
// Neutral 0.5 when the trajectory made no tool calls.
func toolFitness(g policy.Genome, calls []telemetry.ToolCallOutcome) float64 {
	if len(calls) == 0 {
		return 0.5
	}
	var sum float64
	for _, call := range calls {
		pref, ok := g.ToolPreferences[call.ToolName]
		if !ok {
			pref = 0.01
		}
		successBoost := -0.7
		if call.Success {
			successBoost = 1.0
		}
		risk := clamp(call.RiskScore, 0, 1)
		riskPenalty := 0.0
		if risk > g.Safeguards.MaxRiskScore {
			riskPenalty = -0.8
		}
		sum += pref * (1 + successBoost - 0.5*risk + riskPenalty)
	}
	raw := sum / float64(len(calls))
	return clamp((raw+1)/2, 0, 1)
}

func styleFactor(style string) float64 {
	switch style {
	case policy.StyleBalanced:
		return 1.0
	case policy.StyleConcise:
		return 0.95
	default:
		return 0.9
	}
}

func normalizedCost(costUsd float64) float64 {
	return clamp(1-costUsd/0.15, 0, 1)
}

func normalizedLatency(latencyMs float64) float64 {
	return clamp(1-latencyMs/20000, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// #endregion per-trajectory
