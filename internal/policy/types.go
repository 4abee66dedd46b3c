package policy

// #region response-style
// ResponseStyle constrains the genome's answer verbosity.
const (
	StyleConcise  = "concise"
	StyleBalanced = "balanced"
	StyleDetailed = "detailed"
)

// #endregion response-style

// #region safeguards
// Safeguards are the hard safety limits carried by a genome.
type Safeguards struct {
	MaxRiskScore    float64  `json:"maxRiskScore"` // 0.05..0.95
	DisallowedTools []string `json:"disallowedTools"`
}

// #endregion safeguards

// #region genome
// Genome is a deployable policy candidate. The controller treats it as a
// value; only the external optimizer produces or mutates genomes.
type Genome struct {
	ID                 string             `json:"id"`
	BaseModel          string             `json:"baseModel"`
	SystemPrompt       string             `json:"systemPrompt"`
	ResponseStyle      string             `json:"responseStyle"`
	ToolPreferences    map[string]float64 `json:"toolPreferences"`
	ToolRetryBudget    int                `json:"toolRetryBudget"`    // 0..8
	DeliberationBudget int                `json:"deliberationBudget"` // 1..12
	MemoryDepth        int                `json:"memoryDepth"`        // 1..64
	Safeguards         Safeguards         `json:"safeguards"`
	MutationTrace      []string           `json:"mutationTrace,omitempty"`
}

// #endregion genome

// #region seed-config
// SeedConfig is the base configuration a fresh seed genome is built from
// when no champion exists yet.
type SeedConfig struct {
	BaseModel       string             `yaml:"baseModel"`
	SystemPrompt    string             `yaml:"systemPrompt"`
	ToolPreferences map[string]float64 `yaml:"toolPreferences"`
}

// #endregion seed-config
