// internal/predictor/instrumented.go
package predictor

import (
	"context"
	"time"

	"fealden/internal/fold"
	"fealden/internal/metrics"
)

// Instrumented records latency and failures of the wrapped predictor.
type Instrumented struct {
	Next Predictor
}

func (i Instrumented) Predict(ctx context.Context, sequence string) ([]fold.Fold, error) {
	start := time.Now()
	folds, err := i.Next.Predict(ctx, sequence)
	metrics.PredictorDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictorErrors.Inc()
	}
	return folds, err
}
