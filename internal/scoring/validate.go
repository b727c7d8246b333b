// internal/scoring/validate.go
package scoring

import (
	"math"

	"fealden/internal/sensor"
)

// Defaults applied when a threshold is left at its zero value.
const (
	DefaultRatioLo    = 0.9
	DefaultRatioHi    = 1.1
	DefaultMaxUnknown = 0.2
)

// Range is an inclusive integer range.
type Range struct {
	Lo int
	Hi int
}

// Thresholds are the acceptance criteria for a candidate.
type Thresholds struct {
	// RatioLo and RatioHi bound binding_on/nonbinding_off, exclusive.
	// Both zero selects the defaults.
	RatioLo float64
	RatioHi float64
	// MaxUnknown bounds the unknown fraction, exclusive.
	MaxUnknown float64
	// FoldRange bounds the number of folds; nil disables the check.
	FoldRange *Range
	// MaxEnergy is the slack added to the recognition energy that the
	// lowest fold energy may not fall below; nil disables the check.
	MaxEnergy *float64
}

// DefaultThresholds returns ratio (0.9, 1.1) and max unknown 0.2.
func DefaultThresholds() Thresholds {
	return Thresholds{RatioLo: DefaultRatioLo, RatioHi: DefaultRatioHi, MaxUnknown: DefaultMaxUnknown}
}

// WithDefaults fills unset fields.
func (t Thresholds) WithDefaults() Thresholds {
	if t.RatioLo == 0 || t.RatioHi == 0 {
		t.RatioLo, t.RatioHi = DefaultRatioLo, DefaultRatioHi
	}
	if t.MaxUnknown == 0 {
		t.MaxUnknown = DefaultMaxUnknown
	}
	return t
}

// Verdict reports each acceptance check separately.
type Verdict struct {
	Empty     bool
	FoldCount bool
	Energy    bool
	Ratio     bool
	Unknown   bool

	Folds        int
	LowestEnergy float64
	EnergyFloor  float64
	RatioValue   float64
	UnknownValue float64
}

// Accepted is true when every check passed.
func (v Verdict) Accepted() bool {
	return !v.Empty && v.FoldCount && v.Energy && v.Ratio && v.Unknown
}

// Explain runs the acceptance checks on a scored candidate.
func Explain(seq sensor.Sequence, scores Scores, folds []Classified, th Thresholds) Verdict {
	th = th.WithDefaults()
	v := Verdict{
		Empty:        len(folds) == 0,
		FoldCount:    true,
		Energy:       true,
		Folds:        len(folds),
		RatioValue:   scores.Ratio(),
		UnknownValue: scores.Unknown(),
	}
	if v.Empty {
		return v
	}

	if r := th.FoldRange; r != nil {
		v.FoldCount = r.Lo <= len(folds) && len(folds) <= r.Hi
	}

	v.LowestEnergy = math.Inf(1)
	for _, f := range folds {
		v.LowestEnergy = math.Min(v.LowestEnergy, f.Energy)
	}
	if th.MaxEnergy != nil {
		v.EnergyFloor = seq.RecognitionEnergy() + *th.MaxEnergy
		v.Energy = v.EnergyFloor <= v.LowestEnergy
	}

	v.Ratio = th.RatioLo < v.RatioValue && v.RatioValue < th.RatioHi
	v.Unknown = v.UnknownValue < th.MaxUnknown
	return v
}

// Validate reports whether a scored candidate meets th.
func Validate(seq sensor.Sequence, scores Scores, folds []Classified, th Thresholds) bool {
	return Explain(seq, scores, folds, th).Accepted()
}
