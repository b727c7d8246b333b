// internal/predictor/cached.go
package predictor

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"fealden/internal/fold"
	"fealden/internal/metrics"
)

// Cached memoises successful predictions by sequence. Failures are passed
// through and never stored, so a failing sequence is re-run next time.
type Cached struct {
	next  Predictor
	cache *cache.Cache
}

// NewCached wraps next with an in-memory cache whose entries live for ttl.
func NewCached(next Predictor, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) Predict(ctx context.Context, sequence string) ([]fold.Fold, error) {
	if v, ok := c.cache.Get(sequence); ok {
		metrics.PredictorCache.WithLabelValues("hit").Inc()
		return v.([]fold.Fold), nil
	}
	metrics.PredictorCache.WithLabelValues("miss").Inc()
	folds, err := c.next.Predict(ctx, sequence)
	if err != nil {
		return nil, err
	}
	c.cache.Set(sequence, folds, cache.DefaultExpiration)
	return folds, nil
}

// Len is the number of live entries.
func (c *Cached) Len() int { return c.cache.ItemCount() }
