package replay

import (
	"context"
	"fmt"

	"github.com/openclaw/clawevolve/controller/internal/optimizer"
	"github.com/openclaw/clawevolve/controller/internal/orchestrator"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/trigger"
)

// #region scripted-optimizer

// scriptedOptimizer hands out fixture candidates in order.
type scriptedOptimizer struct {
	candidates []policy.Genome
	next       int
}

func (s *scriptedOptimizer) Evolve(_ context.Context, _ optimizer.EvolveRequest) (optimizer.EvolveResult, error) {
	if s.next >= len(s.candidates) {
		return optimizer.EvolveResult{}, fmt.Errorf("fixture exhausted after %d candidates", len(s.candidates))
	}
	g := s.candidates[s.next]
	s.next++
	return optimizer.EvolveResult{Champion: g}, nil
}

// #endregion scripted-optimizer

// #region result

// Result captures everything one replay produced.
type Result struct {
	Runs           []runlog.RunSummary
	Events         []runlog.Event
	FinalChampion  *policy.Genome
	FinalWindowLen int
}

// Summary aggregates a replay outcome.
type Summary struct {
	TotalTrajectories int
	Runs              int
	Promotions        int
	Rejections        int
	Errors            int
	Rollbacks         int
	FinalChampionID   string
}

// #endregion result

// #region replay

// Replay feeds the fixture trajectories through a fresh controller. A
// synchronous run happens wherever the online schedule would have fired,
// so the recorded traffic exercises the exact trigger, split, gate, and
// rollback path a live deployment would take.
func Replay(f *Fixture) Result {
	cfg := f.Config.ControllerConfig()
	ctrl := orchestrator.New(cfg, &scriptedOptimizer{candidates: f.Candidates})

	for _, t := range f.Trajectories {
		st := ctrl.Ingest(t)
		if wouldFire(st) {
			// Optimizer errors are part of the recorded outcome.
			_, _ = ctrl.Evolve(context.Background(), orchestrator.EvolveOverrides{})
		}
	}

	res := Result{
		Runs:           ctrl.RunHistory(),
		Events:         ctrl.Events(),
		FinalWindowLen: ctrl.Status().WindowLen,
	}
	if champ, ok := ctrl.Champion(); ok {
		res.FinalChampion = &champ
	}
	return res
}

// wouldFire reports whether the only blocker is the disabled online
// trigger, meaning a live deployment would have started a run here.
func wouldFire(st trigger.Status) bool {
	return len(st.Reasons) == 1 && st.Reasons[0] == trigger.ReasonOnlineDisabled
}

// Summarize computes aggregate stats for a replayed fixture.
func Summarize(f *Fixture, res Result) Summary {
	s := Summary{
		TotalTrajectories: len(f.Trajectories),
		Runs:              len(res.Runs),
	}
	for _, r := range res.Runs {
		switch {
		case r.Promoted:
			s.Promotions++
		case r.Error != "":
			s.Errors++
		default:
			s.Rejections++
		}
	}
	for _, ev := range res.Events {
		if ev.Type == runlog.EventRollback {
			s.Rollbacks++
		}
	}
	if res.FinalChampion != nil {
		s.FinalChampionID = res.FinalChampion.ID
	}
	return s
}

// #endregion replay
