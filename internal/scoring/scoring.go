// internal/scoring/scoring.go
package scoring

import (
	"math"

	"fealden/internal/fold"
	"fealden/internal/sensor"
)

// Category aggregates the folds of one binding category.
type Category struct {
	Fraction float64
	Count    int
}

// Scores holds one Category per fold.Type.
type Scores [len(fold.Types)]Category

func (s Scores) Get(t fold.Type) Category { return s[t] }

// Unknown is the population fraction whose signal is undetermined.
func (s Scores) Unknown() float64 {
	return s[fold.BindingUnknown].Fraction + s[fold.NonbindingUnknown].Fraction
}

// Ratio is binding_on over nonbinding_off, or 0 when nothing is off.
func (s Scores) Ratio() float64 {
	off := s[fold.NonbindingOff].Fraction
	if off == 0 {
		return 0
	}
	return s[fold.BindingOn].Fraction / off
}

// Classified is a predicted fold with its category and population share.
type Classified struct {
	fold.Fold
	Type     fold.Type
	Fraction float64
}

// Score classifies every fold of seq and weights each one by exp(|E|),
// normalised over the whole set.
func Score(seq sensor.Sequence, folds []fold.Fold) (Scores, []Classified) {
	var scores Scores
	if len(folds) == 0 {
		return scores, nil
	}

	// Shift by the largest magnitude so exp never overflows; the shift
	// cancels in the normalisation.
	var top float64
	for _, f := range folds {
		top = math.Max(top, math.Abs(f.Energy))
	}
	weights := make([]float64, len(folds))
	var total float64
	for i, f := range folds {
		weights[i] = math.Exp(math.Abs(f.Energy) - top)
		total += weights[i]
	}

	recog, q := seq.Recognition(), seq.QuencherIndex()
	out := make([]Classified, len(folds))
	for i, f := range folds {
		c := Classified{Fold: f, Type: fold.Classify(f, recog, q), Fraction: weights[i] / total}
		out[i] = c
		scores[c.Type].Fraction += c.Fraction
		scores[c.Type].Count++
	}
	return scores, out
}
