// pkg/api/solutions_v1.go
package api

// SolutionV1 is the stable JSON/JSONL/YAML schema for an accepted sensor.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type SolutionV1 struct {
	RequestID         string        `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Recognition       string        `json:"recognition" yaml:"recognition"`
	Sequence          string        `json:"sequence" yaml:"sequence"`
	Stem1             string        `json:"stem1" yaml:"stem1"`
	Stem2             string        `json:"stem2" yaml:"stem2"`
	QuencherIndex     int           `json:"quencher_index" yaml:"quencher_index"` // 1-based
	RecognitionEnergy float64       `json:"recognition_energy" yaml:"recognition_energy"`
	StemEnergy        float64       `json:"stem_energy" yaml:"stem_energy"`
	Ratio             float64       `json:"ratio" yaml:"ratio"`
	Unknown           float64       `json:"unknown" yaml:"unknown"`
	BindingConstant   float64       `json:"binding_constant" yaml:"binding_constant"`
	Scores            []CategoryV1  `json:"scores" yaml:"scores"`
	Folds             []FoldV1      `json:"folds" yaml:"folds"`
	Gain              []GainPointV1 `json:"gain,omitempty" yaml:"gain,omitempty"`
}

// CategoryV1 is the Boltzmann-weighted share of one fold type.
type CategoryV1 struct {
	Type     string  `json:"type" yaml:"type"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	Count    int     `json:"count" yaml:"count"`
}

// FoldV1 is one predicted secondary structure of a solution.
type FoldV1 struct {
	Energy    float64 `json:"energy" yaml:"energy"`
	Type      string  `json:"type" yaml:"type"` // binding_on | nonbinding_off | binding_unknown | nonbinding_unknown
	Fraction  float64 `json:"fraction" yaml:"fraction"`
	Structure string  `json:"structure" yaml:"structure"` // dot-bracket
	// PathLength is the number of backbone/pair hops from the fluorophore
	// to the quencher.
	PathLength int `json:"path_length,omitempty" yaml:"path_length,omitempty"`
}

// GainPointV1 is one sample of the predicted signal gain curve.
type GainPointV1 struct {
	Affinity      float64 `json:"affinity" yaml:"affinity"`
	Concentration float64 `json:"concentration" yaml:"concentration"`
	Gain          float64 `json:"gain" yaml:"gain"`
}

// FailureV1 records a request that ended without an accepted sensor.
type FailureV1 struct {
	RequestID   string `json:"request_id" yaml:"request_id"`
	Recognition string `json:"recognition" yaml:"recognition"`
	Sequence    string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Reason      string `json:"reason" yaml:"reason"`
}

// Result statuses.
const (
	StatusFound   = "found"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// ResultV1 is what a request's output directory, and the HTTP front end,
// report for a recognition site.
type ResultV1 struct {
	Status      string       `json:"status" yaml:"status"`
	RequestID   string       `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Recognition string       `json:"recognition" yaml:"recognition"`
	Solutions   []SolutionV1 `json:"solutions,omitempty" yaml:"solutions,omitempty"`
	Failure     *FailureV1   `json:"failure,omitempty" yaml:"failure,omitempty"`
}
