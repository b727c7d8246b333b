// internal/scoring/gain.go
package scoring

import (
	"math"

	"fealden/internal/fold"
)

// BindingConstant is the equilibrium ratio of binding to nonbinding folds,
// or 0 when the candidate has no nonbinding population.
func BindingConstant(s Scores) float64 {
	bind := s[fold.BindingOn].Fraction + s[fold.BindingUnknown].Fraction
	nonbind := s[fold.NonbindingOff].Fraction + s[fold.NonbindingUnknown].Fraction
	if nonbind <= 0 {
		return 0
	}
	return bind / nonbind
}

// Gain is the predicted sensor gain at target concentration x (M) for a
// target with dissociation constant affinity (M).
func Gain(ks, affinity, x float64) float64 {
	den := affinity*(1+ks) + ks*x
	if den == 0 {
		return 0
	}
	return ks * x / den
}

// GainPoint is one sample of a gain curve.
type GainPoint struct {
	Affinity      float64
	Concentration float64
	Gain          float64
}

// GainCurve samples Gain over every affinity and concentration.
func GainCurve(ks float64, affinities, concentrations []float64) []GainPoint {
	out := make([]GainPoint, 0, len(affinities)*len(concentrations))
	for _, a := range affinities {
		for _, x := range concentrations {
			out = append(out, GainPoint{Affinity: a, Concentration: x, Gain: Gain(ks, a, x)})
		}
	}
	return out
}

// Logspace returns n points evenly spaced in log10 between 10^lo and 10^hi.
func Logspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{math.Pow(10, lo)}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, lo+step*float64(i))
	}
	return out
}

// DefaultAffinities are 1 nM to 100 uM in decades.
func DefaultAffinities() []float64 { return Logspace(-9, -4, 6) }

// DefaultConcentrations span 0.1 nM to 1 mM.
func DefaultConcentrations() []float64 { return Logspace(-10, -3, 50) }
