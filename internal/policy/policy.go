package policy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// #region new-id
// NewID mints a genome id: time-ordered prefix plus a short random suffix.
func NewID() string {
	return fmt.Sprintf("genome_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// #endregion new-id

// #region seed
// Seed builds a fresh seed genome from base configuration. Used when a
// run starts with no champion to evolve from.
func Seed(cfg SeedConfig) Genome {
	base := cfg.BaseModel
	if base == "" {
		base = "gpt-5-mini"
	}
	return Genome{
		ID:                 NewID(),
		BaseModel:          base,
		SystemPrompt:       cfg.SystemPrompt,
		ResponseStyle:      StyleBalanced,
		ToolPreferences:    NormalizePreferences(cfg.ToolPreferences),
		ToolRetryBudget:    1,
		DeliberationBudget: 2,
		MemoryDepth:        6,
		Safeguards: Safeguards{
			MaxRiskScore:    0.55,
			DisallowedTools: nil,
		},
	}
}

// #endregion seed

// #region normalize
// NormalizePreferences clamps weights to non-negative and rescales them to
// sum to 1. An empty or all-zero map normalizes to a uniform distribution
// over its keys.
func NormalizePreferences(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	total := 0.0
	for k, v := range weights {
		if v < 0 {
			v = 0
		}
		out[k] = v
		total += v
	}
	if total <= 0 {
		n := len(out)
		if n == 0 {
			return out
		}
		for k := range out {
			out[k] = 1.0 / float64(n)
		}
		return out
	}
	for k := range out {
		out[k] /= total
	}
	return out
}

// #endregion normalize

// #region clamp
// Clamp forces every bounded genome field back into its valid range.
// Applied wherever an optimizer-produced genome enters the controller.
func Clamp(g Genome) Genome {
	g.ToolRetryBudget = clampInt(g.ToolRetryBudget, 0, 8)
	g.DeliberationBudget = clampInt(g.DeliberationBudget, 1, 12)
	g.MemoryDepth = clampInt(g.MemoryDepth, 1, 64)
	g.Safeguards.MaxRiskScore = clampFloat(g.Safeguards.MaxRiskScore, 0.05, 0.95)
	switch g.ResponseStyle {
	case StyleConcise, StyleBalanced, StyleDetailed:
	default:
		g.ResponseStyle = StyleBalanced
	}
	g.ToolPreferences = NormalizePreferences(g.ToolPreferences)
	return g
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion clamp

// #region diff
// Diff lists the field-level differences from old to new, one entry per
// changed field. Tool preference changes are reported per tool.
func Diff(old, new Genome) []string {
	var out []string
	if old.SystemPrompt != new.SystemPrompt {
		out = append(out, "systemPrompt changed")
	}
	if old.ResponseStyle != new.ResponseStyle {
		out = append(out, fmt.Sprintf("responseStyle: %s -> %s", old.ResponseStyle, new.ResponseStyle))
	}
	if old.ToolRetryBudget != new.ToolRetryBudget {
		out = append(out, fmt.Sprintf("toolRetryBudget: %d -> %d", old.ToolRetryBudget, new.ToolRetryBudget))
	}
	if old.DeliberationBudget != new.DeliberationBudget {
		out = append(out, fmt.Sprintf("deliberationBudget: %d -> %d", old.DeliberationBudget, new.DeliberationBudget))
	}
	if old.MemoryDepth != new.MemoryDepth {
		out = append(out, fmt.Sprintf("memoryDepth: %d -> %d", old.MemoryDepth, new.MemoryDepth))
	}
	if old.Safeguards.MaxRiskScore != new.Safeguards.MaxRiskScore {
		out = append(out, fmt.Sprintf("safeguards.maxRiskScore: %.2f -> %.2f", old.Safeguards.MaxRiskScore, new.Safeguards.MaxRiskScore))
	}
	if !equalStringSets(old.Safeguards.DisallowedTools, new.Safeguards.DisallowedTools) {
		out = append(out, "safeguards.disallowedTools changed")
	}
	for _, name := range prefKeys(old.ToolPreferences, new.ToolPreferences) {
		ov, nv := old.ToolPreferences[name], new.ToolPreferences[name]
		if absDelta(ov, nv) > 1e-9 {
			out = append(out, fmt.Sprintf("toolPreferences.%s: %.3f -> %.3f", name, ov, nv))
		}
	}
	return out
}

func prefKeys(a, b map[string]float64) []string {
	seen := map[string]bool{}
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func absDelta(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// #endregion diff
