// internal/search/walker.go
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fealden/internal/scoring"
	"fealden/internal/sensor"
)

// PromisingMargin is how far below the recognition energy the stem energy
// may fall before a node stops branching.
const PromisingMargin = 2.0

// guesses is the child order of every promising node.
var guesses = [...]byte{'C', 'A', 'G', 'T'}

// Promising reports whether seq is worth growing further.
func Promising(seq sensor.Sequence) bool {
	return seq.StemEnergy() > seq.RecognitionEnergy()-PromisingMargin
}

type walker struct {
	id        int
	ctx       context.Context
	predictor Predictor
	events    chan<- Event
	stop      *atomic.Bool
	log       *slog.Logger
}

// visit reports seq, explores its children and then evaluates seq itself.
// A predictor failure ends the whole subtree.
func (w *walker) visit(seq sensor.Sequence, depth int) error {
	w.events <- Depth{Worker: w.id, Depth: depth}
	if w.stop.Load() {
		return nil
	}

	if Promising(seq) {
		for _, b := range guesses {
			if err := w.visit(seq.Grown(b), depth+1); err != nil {
				return err
			}
		}
	} else {
		w.events <- Pruned{Worker: w.id, Depth: depth}
	}

	if w.stop.Load() {
		return nil
	}
	rendered := seq.String()
	folds, err := w.predictor.Predict(w.ctx, rendered)
	if err != nil {
		return fmt.Errorf("predict %s: %w", rendered, err)
	}
	scores, classified := scoring.Score(seq, folds)
	w.log.Debug("evaluated", "worker", w.id, "depth", depth, "sequence", rendered, "folds", len(folds))
	w.events <- Solution{
		Worker:    w.id,
		Depth:     depth,
		Candidate: Candidate{Sequence: seq, Scores: scores, Folds: classified},
	}
	return nil
}
