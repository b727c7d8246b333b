package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fealden/internal/fold"
	"fealden/internal/sensor"
)

func mkFold(t *testing.T, bases, db string, energy float64) fold.Fold {
	t.Helper()
	require.Equal(t, len(bases), len(db))
	f := fold.Fold{Energy: energy, Nucleotides: make([]fold.Nucleotide, len(db))}
	var stack []int
	for i := range db {
		f.Nucleotides[i] = fold.Nucleotide{Base: bases[i], Upstream: i}
		if i+1 < len(db) {
			f.Nucleotides[i].Downstream = i + 2
		}
		switch db[i] {
		case '(':
			stack = append(stack, i+1)
		case ')':
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			f.Nucleotides[i].Pair = j
			f.Nucleotides[j-1].Pair = i + 1
		}
	}
	return f
}

func TestScore(t *testing.T) {
	seq := sensor.New("ATTA")
	on := mkFold(t, "ATTACGAAAGTAAT", "(((((....)))))", -2)
	open := mkFold(t, "ATTACGAAAGTAAT", "..............", -1)

	scores, cl := Score(seq, []fold.Fold{on, open})
	require.Len(t, cl, 2)

	e := math.E
	assert.Equal(t, fold.BindingOn, cl[0].Type)
	assert.Equal(t, fold.NonbindingUnknown, cl[1].Type)
	assert.InDelta(t, e/(e+1), cl[0].Fraction, 1e-9)
	assert.InDelta(t, 1/(e+1), cl[1].Fraction, 1e-9)

	assert.Equal(t, 1, scores.Get(fold.BindingOn).Count)
	assert.Equal(t, 1, scores.Get(fold.NonbindingUnknown).Count)
	assert.Equal(t, 0, scores.Get(fold.NonbindingOff).Count)

	var sum float64
	for _, ty := range fold.Types {
		sum += scores.Get(ty).Fraction
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, cl[1].Fraction, scores.Unknown(), 1e-9)
}

func TestScore_LargeEnergiesStayFinite(t *testing.T) {
	seq := sensor.New("ATTA")
	a := mkFold(t, "ACGT", "....", -900)
	b := mkFold(t, "ACGT", "....", -899)
	scores, cl := Score(seq, []fold.Fold{a, b})
	assert.False(t, math.IsNaN(cl[0].Fraction))
	assert.InDelta(t, 1.0, scores.Get(fold.NonbindingUnknown).Fraction, 1e-9)
	assert.Equal(t, 2, scores.Get(fold.NonbindingUnknown).Count)
}

func TestScore_NoFolds(t *testing.T) {
	scores, cl := Score(sensor.New("ATTA"), nil)
	assert.Empty(t, cl)
	assert.Equal(t, Scores{}, scores)
}

func scoresOf(on, off, bu, nu float64) Scores {
	var s Scores
	s[fold.BindingOn].Fraction = on
	s[fold.NonbindingOff].Fraction = off
	s[fold.BindingUnknown].Fraction = bu
	s[fold.NonbindingUnknown].Fraction = nu
	return s
}

func folds(energies ...float64) []Classified {
	out := make([]Classified, len(energies))
	for i, e := range energies {
		out[i] = Classified{Fold: fold.Fold{Energy: e}}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	seq := sensor.New("ATTA") // recognition energy -1.4
	cases := []struct {
		name   string
		scores Scores
		folds  []Classified
		th     Thresholds
		want   bool
	}{
		{"balanced", scoresOf(0.5, 0.5, 0, 0), folds(-2), DefaultThresholds(), true},
		{"zero value thresholds use defaults", scoresOf(0.5, 0.5, 0, 0), folds(-2), Thresholds{}, true},
		{"nothing off", scoresOf(1, 0, 0, 0), folds(-2), DefaultThresholds(), false},
		{"ratio on the bound is out", scoresOf(0.45, 0.5, 0.05, 0), folds(-2), DefaultThresholds(), false},
		{"ratio too low", scoresOf(0.4, 0.6, 0, 0), folds(-2), DefaultThresholds(), false},
		{"too much unknown", scoresOf(0.35, 0.35, 0.2, 0.1), folds(-2), DefaultThresholds(), false},
		{"custom ratio", scoresOf(0.4, 0.6, 0, 0), folds(-2), Thresholds{RatioLo: 0.6, RatioHi: 0.7}, true},
		{"fold count low", scoresOf(0.5, 0.5, 0, 0), folds(-2), Thresholds{FoldRange: &Range{2, 4}}, false},
		{"fold count ok", scoresOf(0.5, 0.5, 0, 0), folds(-2, -1, -1), Thresholds{FoldRange: &Range{2, 4}}, true},
		{"energy below floor", scoresOf(0.5, 0.5, 0, 0), folds(-3, -1), Thresholds{MaxEnergy: ptr(-1.3)}, false},
		{"energy above floor", scoresOf(0.5, 0.5, 0, 0), folds(-2, -1), Thresholds{MaxEnergy: ptr(-1.3)}, true},
		{"no folds", scoresOf(0.5, 0.5, 0, 0), nil, DefaultThresholds(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Validate(seq, c.scores, c.folds, c.th))
		})
	}
}

func TestExplain(t *testing.T) {
	v := Explain(sensor.New("ATTA"), scoresOf(0.3, 0.3, 0.4, 0), folds(-5, -1), Thresholds{MaxEnergy: ptr(-1.3)})
	assert.False(t, v.Accepted())
	assert.True(t, v.Ratio)
	assert.False(t, v.Unknown)
	assert.False(t, v.Energy)
	assert.True(t, v.FoldCount)
	assert.InDelta(t, -5, v.LowestEnergy, 1e-9)
	assert.InDelta(t, -2.7, v.EnergyFloor, 1e-9)
	assert.Equal(t, 2, v.Folds)
}

func TestGain(t *testing.T) {
	assert.InDelta(t, 1.0/3, Gain(1, 1e-6, 1e-6), 1e-12)
	assert.Equal(t, 0.0, Gain(0, 0, 0))

	assert.InDelta(t, 0.5/0.5, BindingConstant(scoresOf(0.25, 0.25, 0.25, 0.25)), 1e-9)
	assert.Equal(t, 0.0, BindingConstant(scoresOf(1, 0, 0, 0)))

	aff := DefaultAffinities()
	require.Len(t, aff, 6)
	assert.InDelta(t, 1e-9, aff[0], 1e-21)
	assert.InDelta(t, 1e-4, aff[5], 1e-16)

	curve := GainCurve(2, aff, DefaultConcentrations())
	assert.Len(t, curve, 6*50)
	for _, p := range curve {
		assert.True(t, p.Gain >= 0 && p.Gain < 1)
	}
}
