// internal/writers/convert.go
package writers

import (
	"fealden/internal/fold"
	"fealden/internal/scoring"
	"fealden/internal/search"
	"fealden/pkg/api"
)

// ToAPISolution converts a candidate to the v1 wire type. The gain curve is
// sampled at the default affinities and concentrations when withGain is set.
func ToAPISolution(c search.Candidate, requestID string, withGain bool) api.SolutionV1 {
	seq := c.Sequence
	q := seq.QuencherIndex()
	ks := scoring.BindingConstant(c.Scores)

	out := api.SolutionV1{
		RequestID:         requestID,
		Recognition:       seq.Recognition(),
		Sequence:          seq.String(),
		Stem1:             seq.Stem1(),
		Stem2:             seq.Stem2(),
		QuencherIndex:     q,
		RecognitionEnergy: seq.RecognitionEnergy(),
		StemEnergy:        seq.StemEnergy(),
		Ratio:             c.Scores.Ratio(),
		Unknown:           c.Scores.Unknown(),
		BindingConstant:   ks,
		Scores:            make([]api.CategoryV1, 0, len(fold.Types)),
		Folds:             make([]api.FoldV1, 0, len(c.Folds)),
	}
	for _, t := range fold.Types {
		cat := c.Scores.Get(t)
		out.Scores = append(out.Scores, api.CategoryV1{Type: t.String(), Fraction: cat.Fraction, Count: cat.Count})
	}
	for _, f := range c.Folds {
		fv := api.FoldV1{
			Energy:    f.Energy,
			Type:      f.Type.String(),
			Fraction:  f.Fraction,
			Structure: fold.DotBracket(f.Fold),
		}
		if path, ok := fold.LinearPath(f.Fold, 1, q); ok {
			fv.PathLength = len(path) - 1
		}
		out.Folds = append(out.Folds, fv)
	}
	if withGain {
		for _, p := range scoring.GainCurve(ks, scoring.DefaultAffinities(), scoring.DefaultConcentrations()) {
			out.Gain = append(out.Gain, api.GainPointV1{Affinity: p.Affinity, Concentration: p.Concentration, Gain: p.Gain})
		}
	}
	return out
}

// ToAPISolutions converts every candidate of one request.
func ToAPISolutions(cs []search.Candidate, requestID string, withGain bool) []api.SolutionV1 {
	out := make([]api.SolutionV1, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToAPISolution(c, requestID, withGain))
	}
	return out
}
