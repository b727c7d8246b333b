// internal/search/predictor.go
package search

import (
	"context"

	"fealden/internal/fold"
)

// Predictor returns the candidate structures of a rendered sequence. An
// empty result is a valid prediction; failures must be reported as errors.
type Predictor interface {
	Predict(ctx context.Context, sequence string) ([]fold.Fold, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, sequence string) ([]fold.Fold, error)

func (f PredictorFunc) Predict(ctx context.Context, sequence string) ([]fold.Fold, error) {
	return f(ctx, sequence)
}
