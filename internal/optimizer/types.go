package optimizer

import (
	"context"

	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// #region algorithm
// Algorithm carries search-algorithm overrides forwarded verbatim to the
// optimizer. OuterHoldoutApplied tells it the caller already held out
// validation data so it must not split again.
type Algorithm struct {
	OuterHoldoutApplied        bool   `json:"outerHoldoutApplied"`
	CandidateSelectionStrategy string `json:"candidateSelectionStrategy,omitempty"`
	ReflectionMinibatchSize    int    `json:"reflectionMinibatchSize,omitempty"`
}

// #endregion algorithm

// #region request-result
// EvolveRequest is the full input to one optimization run.
type EvolveRequest struct {
	SeedGenome       policy.Genome          `json:"seedGenome"`
	Trajectories     []telemetry.Trajectory `json:"trajectories"`
	Generations      int                    `json:"generations"`
	PopulationSize   int                    `json:"populationSize"`
	ObjectiveWeights eval.Weights           `json:"objectiveWeights"`
	Algorithm        Algorithm              `json:"algorithm"`
}

// GenerationRecord is one entry of the optimizer's search history.
type GenerationRecord struct {
	Generation int      `json:"generation"`
	BestScore  *float64 `json:"bestScore"`
}

// EvolveResult is the optimizer's output. A structurally incomplete
// result (missing champion or evaluation) is surfaced as an error by the
// client, never as a zero value.
type EvolveResult struct {
	Champion           policy.Genome      `json:"champion"`
	ChampionEvaluation eval.Evaluation    `json:"championEvaluation"`
	History            []GenerationRecord `json:"history,omitempty"`
}

// #endregion request-result

// #region interface
// Optimizer is the external black-box search collaborator.
type Optimizer interface {
	Evolve(ctx context.Context, req EvolveRequest) (EvolveResult, error)
}

// #endregion interface
