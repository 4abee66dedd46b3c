package policy

import (
	"strings"
	"testing"
)

func TestSeedDefaults(t *testing.T) {
	g := Seed(SeedConfig{})
	if g.ID == "" || !strings.HasPrefix(g.ID, "genome_") {
		t.Fatalf("unexpected seed id %q", g.ID)
	}
	if g.ResponseStyle != StyleBalanced {
		t.Fatalf("expected balanced style, got %s", g.ResponseStyle)
	}
	if g.ToolRetryBudget != 1 || g.DeliberationBudget != 2 || g.MemoryDepth != 6 {
		t.Fatalf("unexpected budget defaults: %d %d %d", g.ToolRetryBudget, g.DeliberationBudget, g.MemoryDepth)
	}
	if g.Safeguards.MaxRiskScore != 0.55 {
		t.Fatalf("expected max risk 0.55, got %f", g.Safeguards.MaxRiskScore)
	}
	if g.BaseModel != "gpt-5-mini" {
		t.Fatalf("expected default base model, got %s", g.BaseModel)
	}
}

func TestNormalizePreferencesScalesToOne(t *testing.T) {
	norm := NormalizePreferences(map[string]float64{"a": 1, "b": 3})
	if norm["a"] != 0.25 || norm["b"] != 0.75 {
		t.Fatalf("unexpected normalization: %v", norm)
	}
}

func TestNormalizePreferencesNegativeAndZero(t *testing.T) {
	norm := NormalizePreferences(map[string]float64{"a": -5, "b": 0})
	if norm["a"] != 0.5 || norm["b"] != 0.5 {
		t.Fatalf("expected uniform fallback, got %v", norm)
	}
	if got := NormalizePreferences(nil); len(got) != 0 {
		t.Fatalf("nil input should normalize to empty, got %v", got)
	}
}

func TestClampForcesRanges(t *testing.T) {
	g := Clamp(Genome{
		ResponseStyle:      "verbose",
		ToolRetryBudget:    99,
		DeliberationBudget: 0,
		MemoryDepth:        1000,
		Safeguards:         Safeguards{MaxRiskScore: 2.0},
	})
	if g.ToolRetryBudget != 8 {
		t.Fatalf("retry budget not clamped: %d", g.ToolRetryBudget)
	}
	if g.DeliberationBudget != 1 {
		t.Fatalf("deliberation budget not clamped: %d", g.DeliberationBudget)
	}
	if g.MemoryDepth != 64 {
		t.Fatalf("memory depth not clamped: %d", g.MemoryDepth)
	}
	if g.Safeguards.MaxRiskScore != 0.95 {
		t.Fatalf("risk score not clamped: %f", g.Safeguards.MaxRiskScore)
	}
	if g.ResponseStyle != StyleBalanced {
		t.Fatalf("invalid style should fall back to balanced, got %s", g.ResponseStyle)
	}
}

func TestDiffReportsChangedFields(t *testing.T) {
	old := Seed(SeedConfig{ToolPreferences: map[string]float64{"search": 1, "code": 1}})
	new := old
	new.SystemPrompt = "be careful"
	new.MemoryDepth = 12
	new.ToolPreferences = map[string]float64{"search": 0.8, "code": 0.2}

	diff := Diff(old, new)
	if len(diff) < 3 {
		t.Fatalf("expected at least 3 diff entries, got %v", diff)
	}
	joined := strings.Join(diff, "\n")
	for _, want := range []string{"systemPrompt", "memoryDepth", "toolPreferences.search"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("diff missing %q: %v", want, diff)
		}
	}
}

func TestDiffIdenticalGenomes(t *testing.T) {
	g := Seed(SeedConfig{})
	if diff := Diff(g, g); len(diff) != 0 {
		t.Fatalf("expected empty diff, got %v", diff)
	}
}
