// Package searchtest provides deterministic structure predictors for tests.
package searchtest

import (
	"context"
	"time"

	"fealden/internal/fold"
)

// PredictFunc matches search.PredictorFunc without importing the search
// package, so the search package's own tests can use it.
type PredictFunc = func(ctx context.Context, sequence string) ([]fold.Fold, error)

// Linear builds a fold of bases with the given 1-based pairs.
func Linear(bases string, energy float64, pairs [][2]int) fold.Fold {
	f := fold.Fold{Energy: energy, Nucleotides: make([]fold.Nucleotide, len(bases))}
	for i := range bases {
		f.Nucleotides[i] = fold.Nucleotide{Base: bases[i], Upstream: i}
		if i+1 < len(bases) {
			f.Nucleotides[i].Downstream = i + 2
		}
	}
	for _, p := range pairs {
		f.Nucleotides[p[0]-1].Pair = p[1]
		f.Nucleotides[p[1]-1].Pair = p[0]
	}
	return f
}

// StemLengths recovers the stem lengths of a rendered candidate. It relies on
// the stems differing by at most one base, which holds for every sequence
// reached by sensor.Sequence.Grow.
func StemLengths(rendered, recog string) (s1, s2 int) {
	half := (len(rendered) - 2*len(recog) - 1) / 2
	s1 = (half + 1) / 2
	return s1, half - s1
}

// Designed returns the two ideal folds of a rendered candidate with equal
// energies: the recognition hybridised to its complement, and both stems
// closed. Together they sit at a binding ratio of 1.
func Designed(recog string) PredictFunc {
	return func(_ context.Context, rendered string) ([]fold.Fold, error) {
		l, n := len(recog), len(rendered)
		s1, s2 := StemLengths(rendered, recog)

		var on, off [][2]int
		rcRecog := 2*s1 + l + s2 + 2
		for i := 0; i < l; i++ {
			on = append(on, [2]int{s1 + 1 + i, rcRecog + l - 1 - i})
		}
		for i := 0; i < s1; i++ {
			off = append(off, [2]int{1 + i, 2*s1 + l - i})
		}
		for i := 0; i < s2; i++ {
			off = append(off, [2]int{2*s1 + l + 2 + i, n - i})
		}
		return []fold.Fold{Linear(rendered, -5, on), Linear(rendered, -5, off)}, nil
	}
}

// Unpaired folds nothing, so no candidate is ever accepted. Each call
// sleeps for delay first and bumps calls when it is set.
func Unpaired(delay time.Duration, calls interface{ Add(int64) int64 }) PredictFunc {
	return func(_ context.Context, rendered string) ([]fold.Fold, error) {
		if calls != nil {
			calls.Add(1)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		return []fold.Fold{Linear(rendered, -1, nil)}, nil
	}
}
