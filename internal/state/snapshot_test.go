package state

import (
	"testing"
	"time"

	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

func sampleSnapshot() Snapshot {
	champ := policy.Seed(policy.SeedConfig{})
	prev := policy.Seed(policy.SeedConfig{})
	baseline := eval.Evaluation{
		Objectives:     map[string]float64{eval.ObjSafety: 0.8},
		AggregateScore: 0.7,
		SampleCount:    30,
	}
	return Snapshot{
		SchemaVersion:    SchemaVersion,
		CapturedAt:       time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Trajectories:     []telemetry.Trajectory{{ID: "t-1", Success: true}},
		Champion:         &champ,
		PreviousChampion: &prev,
		BaselineEval:     &baseline,
		LastEvolutionAt:  time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		LastEvolutionLen: 1,
		Events:           []runlog.Event{{Type: runlog.EventPromotion, RunID: "r-1"}},
		RunHistory:       []runlog.RunSummary{{RunID: "r-1", Promoted: true}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := Decode(data)
	if got.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version lost: %d", got.SchemaVersion)
	}
	if got.Champion == nil || got.Champion.ID != snap.Champion.ID {
		t.Fatalf("champion lost: %+v", got.Champion)
	}
	if len(got.Trajectories) != 1 || got.Trajectories[0].ID != "t-1" {
		t.Fatalf("trajectories lost: %+v", got.Trajectories)
	}
	if len(got.Events) != 1 || got.Events[0].Type != runlog.EventPromotion {
		t.Fatalf("events lost: %+v", got.Events)
	}
	if got.LastEvolutionLen != 1 {
		t.Fatalf("counter lost: %d", got.LastEvolutionLen)
	}
}

func TestDecodeGarbageYieldsEmptySnapshot(t *testing.T) {
	got := Decode([]byte("not json at all"))
	if got.Champion != nil || len(got.Trajectories) != 0 {
		t.Fatalf("garbage must decode to empty snapshot, got %+v", got)
	}
	if got.SchemaVersion != SchemaVersion {
		t.Fatalf("empty snapshot should carry current schema version, got %d", got.SchemaVersion)
	}
}

func TestDecodeWrongShapeFieldFallsBack(t *testing.T) {
	// trajectories is a string, champion is a number: both wrong shapes.
	data := []byte(`{"schemaVersion":1,"trajectories":"oops","champion":42,"lastEvolutionTrajectoryCount":7}`)
	got := Decode(data)
	if len(got.Trajectories) != 0 {
		t.Fatalf("wrong-shape trajectories must default, got %+v", got.Trajectories)
	}
	if got.Champion != nil {
		t.Fatalf("wrong-shape champion must default, got %+v", got.Champion)
	}
	if got.LastEvolutionLen != 7 {
		t.Fatalf("valid sibling fields must still load, got %d", got.LastEvolutionLen)
	}
}

func TestSanitizeTruncatesToBounds(t *testing.T) {
	snap := Snapshot{}
	for i := 0; i < 30; i++ {
		snap.Trajectories = append(snap.Trajectories, telemetry.Trajectory{ID: string(rune('a' + i%26))})
		snap.Events = append(snap.Events, runlog.Event{Type: runlog.EventRejection})
		snap.RunHistory = append(snap.RunHistory, runlog.RunSummary{RunID: "r"})
	}
	got := Sanitize(snap, Bounds{WindowSize: 10, EventLogCap: 5, RunHistoryCap: 3})
	if len(got.Trajectories) != 10 || len(got.Events) != 5 || len(got.RunHistory) != 3 {
		t.Fatalf("bounds not applied: %d/%d/%d", len(got.Trajectories), len(got.Events), len(got.RunHistory))
	}
}

func TestSanitizeEnforcesBaselinePairInvariant(t *testing.T) {
	champ := policy.Seed(policy.SeedConfig{})
	prev := policy.Seed(policy.SeedConfig{})

	// Previous champion without a baseline evaluation: both cleared.
	got := Sanitize(Snapshot{Champion: &champ, PreviousChampion: &prev}, Bounds{})
	if got.PreviousChampion != nil || got.BaselineEval != nil {
		t.Fatalf("orphaned previous champion must be cleared, got %+v", got)
	}

	// Baseline without a previous champion: cleared too.
	baseline := eval.Evaluation{Objectives: map[string]float64{eval.ObjSafety: 0.9}}
	got = Sanitize(Snapshot{Champion: &champ, BaselineEval: &baseline}, Bounds{})
	if got.BaselineEval != nil {
		t.Fatalf("orphaned baseline must be cleared, got %+v", got)
	}

	// Complete pair survives.
	got = Sanitize(Snapshot{Champion: &champ, PreviousChampion: &prev, BaselineEval: &baseline}, Bounds{})
	if got.PreviousChampion == nil || got.BaselineEval == nil {
		t.Fatal("complete safety net must survive sanitize")
	}
}

func TestSanitizeClampsChampionFields(t *testing.T) {
	champ := policy.Seed(policy.SeedConfig{})
	champ.MemoryDepth = 9999
	got := Sanitize(Snapshot{Champion: &champ}, Bounds{})
	if got.Champion.MemoryDepth != 64 {
		t.Fatalf("champion fields must be clamped on load, got %d", got.Champion.MemoryDepth)
	}
}

func TestSanitizeDropsEmptyChampion(t *testing.T) {
	got := Sanitize(Snapshot{Champion: &policy.Genome{}}, Bounds{})
	if got.Champion != nil {
		t.Fatalf("id-less champion must be dropped, got %+v", got.Champion)
	}
}
