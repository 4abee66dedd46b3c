package eval

// #region objective-names
// Objective names as reported in Evaluation.Objectives.
const (
	ObjSuccessRate     = "successRate"
	ObjSatisfaction    = "satisfaction"
	ObjSafety          = "safety"
	ObjToolReliability = "toolReliability"
	ObjEfficiency      = "efficiency"
)

// #endregion objective-names

// #region weights
// Weights holds the per-objective aggregation weights.
type Weights struct {
	Success         float64 `yaml:"success" json:"success"`
	Satisfaction    float64 `yaml:"satisfaction" json:"satisfaction"`
	Safety          float64 `yaml:"safety" json:"safety"`
	ToolReliability float64 `yaml:"toolReliability" json:"toolReliability"`
	Efficiency      float64 `yaml:"efficiency" json:"efficiency"`
}

// DefaultWeights returns the standard objective weighting.
func DefaultWeights() Weights {
	return Weights{
		Success:         0.30,
		Satisfaction:    0.20,
		Safety:          0.25,
		ToolReliability: 0.15,
		Efficiency:      0.10,
	}
}

// #endregion weights

// #region evaluation
// Evaluation maps named objectives to 0..1 scores plus a single aggregate.
type Evaluation struct {
	Objectives     map[string]float64 `json:"objectives"`
	AggregateScore float64            `json:"aggregateScore"`
	SampleCount    int                `json:"sampleCount"`
}

// Safety returns the safety objective score.
func (e Evaluation) Safety() float64 {
	return e.Objectives[ObjSafety]
}

// SuccessRate returns the success-rate objective score.
func (e Evaluation) SuccessRate() float64 {
	return e.Objectives[ObjSuccessRate]
}

// Clone returns an independent copy.
func (e Evaluation) Clone() Evaluation {
	out := e
	out.Objectives = make(map[string]float64, len(e.Objectives))
	for k, v := range e.Objectives {
		out.Objectives[k] = v
	}
	return out
}

// #endregion evaluation
