// Package predictor adapts secondary-structure predictors for the search.
package predictor

import (
	"context"
	"errors"

	"fealden/internal/fold"
)

// ErrPredictor is wrapped by every failure to produce folds.
var ErrPredictor = errors.New("structure prediction failed")

// Predictor is the capability the search needs. Any value with this method,
// including test fakes, can be decorated by Cached and Instrumented.
type Predictor interface {
	Predict(ctx context.Context, sequence string) ([]fold.Fold, error)
}
