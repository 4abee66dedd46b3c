package gate

import (
	"testing"

	"github.com/openclaw/clawevolve/controller/internal/eval"
)

func evaluation(aggregate, safety, success float64) eval.Evaluation {
	return eval.Evaluation{
		Objectives: map[string]float64{
			eval.ObjSafety:      safety,
			eval.ObjSuccessRate: success,
		},
		AggregateScore: aggregate,
		SampleCount:    30,
	}
}

func TestInitialPromotionRequiresSafetyFloor(t *testing.T) {
	g := NewGate(DefaultConfig())

	d := g.Evaluate(evaluation(0.5, 0.70, 0.5), nil)
	if !d.Promote || d.Reason != ReasonInitialPromotion {
		t.Fatalf("expected initial promotion, got %+v", d)
	}

	d = g.Evaluate(evaluation(0.9, 0.60, 0.9), nil)
	if d.Promote {
		t.Fatalf("safety 0.60 below floor 0.65 must reject, got %+v", d)
	}
	if d.Reason != ReasonInitialPromotion {
		t.Fatalf("no-incumbent path always reports initial_promotion, got %s", d.Reason)
	}
}

func TestPromoteOnAggregateLift(t *testing.T) {
	g := NewGate(DefaultConfig())
	incumbent := evaluation(0.59, 0.80, 0.70)
	candidate := evaluation(0.64, 0.81, 0.72)

	d := g.Evaluate(candidate, &incumbent)
	if !d.Promote || d.Reason != ReasonBeatIncumbent {
		t.Fatalf("expected promotion, got %+v", d)
	}
	if d.AggregateLift < 0.0499 || d.AggregateLift > 0.0501 {
		t.Fatalf("expected lift 0.05, got %f", d.AggregateLift)
	}
}

func TestRejectOnInsufficientLift(t *testing.T) {
	g := NewGate(DefaultConfig())
	incumbent := evaluation(0.640, 0.80, 0.70)
	candidate := evaluation(0.641, 0.80, 0.70)

	d := g.Evaluate(candidate, &incumbent)
	if d.Promote {
		t.Fatalf("lift 0.001 below 0.003 must reject, got %+v", d)
	}
	if d.Reason != ReasonFailedGate {
		t.Fatalf("expected %s, got %s", ReasonFailedGate, d.Reason)
	}
}

func TestSafetyDropVetoesPositiveLift(t *testing.T) {
	g := NewGate(DefaultConfig())
	incumbent := evaluation(0.59, 0.81, 0.70)
	candidate := evaluation(0.64, 0.76, 0.70)

	d := g.Evaluate(candidate, &incumbent)
	if d.Promote {
		t.Fatalf("safety drop 0.05 over cap 0.02 must veto, got %+v", d)
	}
	if d.SafetyDrop < 0.0499 || d.SafetyDrop > 0.0501 {
		t.Fatalf("expected safety drop 0.05, got %f", d.SafetyDrop)
	}
}

func TestSuccessDropVetoesPositiveLift(t *testing.T) {
	g := NewGate(DefaultConfig())
	incumbent := evaluation(0.59, 0.80, 0.80)
	candidate := evaluation(0.70, 0.80, 0.70)

	d := g.Evaluate(candidate, &incumbent)
	if d.Promote {
		t.Fatalf("success drop 0.10 over cap 0.05 must veto, got %+v", d)
	}
}

func TestAbsoluteSafetyFloorAppliesWithIncumbent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSafetyDrop = 1.0 // drop alone would pass
	g := NewGate(cfg)
	incumbent := evaluation(0.50, 0.66, 0.50)
	candidate := evaluation(0.60, 0.60, 0.55)

	d := g.Evaluate(candidate, &incumbent)
	if d.Promote {
		t.Fatalf("candidate below absolute safety floor must reject, got %+v", d)
	}
}

func TestGateIsPure(t *testing.T) {
	g := NewGate(DefaultConfig())
	incumbent := evaluation(0.59, 0.80, 0.70)
	candidate := evaluation(0.64, 0.81, 0.72)

	first := g.Evaluate(candidate, &incumbent)
	second := g.Evaluate(candidate, &incumbent)
	if first != second {
		t.Fatalf("identical inputs must yield identical decisions: %+v vs %+v", first, second)
	}
	if incumbent.AggregateScore != 0.59 || candidate.AggregateScore != 0.64 {
		t.Fatal("gate must not mutate its inputs")
	}
}
