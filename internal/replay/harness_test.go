package replay

import (
	"fmt"
	"testing"
	"time"

	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

func goodTrajectories(n int) []telemetry.Trajectory {
	out := make([]telemetry.Trajectory, n)
	for i := range out {
		out[i] = telemetry.Trajectory{
			ID:           fmt.Sprintf("t-%d", i),
			Timestamp:    time.Date(2026, 4, 1, 0, 0, i, 0, time.UTC),
			Success:      true,
			UserFeedback: 1,
			LatencyMs:    900,
		}
	}
	return out
}

func candidate(id string) policy.Genome {
	return policy.Genome{
		ID:                 id,
		BaseModel:          "gpt-5-mini",
		ResponseStyle:      policy.StyleBalanced,
		ToolRetryBudget:    1,
		DeliberationBudget: 2,
		MemoryDepth:        6,
		Safeguards:         policy.Safeguards{MaxRiskScore: 0.55},
	}
}

func TestReplayPromotesScriptedCandidate(t *testing.T) {
	f := &Fixture{
		Description:  "first promotion",
		Config:       FixtureConfig{MinTrajectories: 10, EvolveEvery: 10},
		Trajectories: goodTrajectories(10),
		Candidates:   []policy.Genome{candidate("g-1")},
	}

	res := Replay(f)
	s := Summarize(f, res)

	if s.Runs != 1 || s.Promotions != 1 {
		t.Fatalf("expected exactly one promoting run, got %+v", s)
	}
	if s.FinalChampionID != "g-1" {
		t.Fatalf("champion mismatch: %+v", s)
	}
	if res.FinalWindowLen != 10 {
		t.Fatalf("window length mismatch: %d", res.FinalWindowLen)
	}
}

func TestReplayExhaustedCandidatesRecordsError(t *testing.T) {
	f := &Fixture{
		Config:       FixtureConfig{MinTrajectories: 10, EvolveEvery: 10},
		Trajectories: goodTrajectories(10),
	}

	res := Replay(f)
	s := Summarize(f, res)

	if s.Runs != 1 || s.Errors != 1 {
		t.Fatalf("expected one failed run, got %+v", s)
	}
	if res.FinalChampion != nil {
		t.Fatalf("failed run must not install a champion: %+v", res.FinalChampion)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	f := &Fixture{
		Config:       FixtureConfig{MinTrajectories: 10, EvolveEvery: 5},
		Trajectories: goodTrajectories(20),
		Candidates:   []policy.Genome{candidate("g-1"), candidate("g-2")},
	}

	first := Summarize(f, Replay(f))
	second := Summarize(f, Replay(f))
	if first != second {
		t.Fatalf("replay must be deterministic: %+v vs %+v", first, second)
	}
}
