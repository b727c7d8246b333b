// internal/search/search.go
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fealden/internal/fold"
	"fealden/internal/metrics"
	"fealden/internal/scoring"
	"fealden/internal/sensor"
)

// ErrAllWorkersFailed is returned when no walker could evaluate its subtree
// and nothing was accepted.
var ErrAllWorkersFailed = errors.New("search: every worker failed")

const (
	DefaultMaxTime     = 60 * time.Second
	DefaultEventBuffer = 64
)

// DefaultSeeds are the first stem symbols of the concurrent walkers.
var DefaultSeeds = []byte{'T', 'G'}

// Options controls one search.
type Options struct {
	MaxTime      time.Duration // time budget; <=0 selects DefaultMaxTime
	Thresholds   scoring.Thresholds
	MaxSolutions int    // accepted candidates to stop at; <=0 means 1
	Seeds        []byte // one walker per seed; empty selects DefaultSeeds
	EventBuffer  int
	Logger       *slog.Logger

	// Observer, when set, sees every event on the coordinator goroutine.
	Observer func(Event)
}

func (o Options) withDefaults() Options {
	if o.MaxTime <= 0 {
		o.MaxTime = DefaultMaxTime
	}
	if o.MaxSolutions <= 0 {
		o.MaxSolutions = 1
	}
	if len(o.Seeds) == 0 {
		o.Seeds = DefaultSeeds
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = DefaultEventBuffer
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	o.Thresholds = o.Thresholds.WithDefaults()
	return o
}

// Stats summarises a finished search.
type Stats struct {
	Visited      int
	Pruned       int
	Evaluated    int
	MaxDepth     int
	Accepted     int
	WorkerErrors int
	Elapsed      time.Duration
}

// Search looks for stems around recognition until opts.MaxSolutions
// candidates pass validation or the time budget runs out. Running out of
// time is not an error; the accepted candidates, possibly none, are returned.
// An error is returned when ctx is cancelled or when every walker failed
// without anything accepted.
func Search(ctx context.Context, recognition string, opts Options, p Predictor) ([]Candidate, Stats, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With("recognition", recognition)
	started := time.Now()

	var (
		stop   atomic.Bool
		events = make(chan Event, opts.EventBuffer)
		done   = make(chan struct{})
		timer  errgroup.Group
		walk   errgroup.Group
	)

	timer.Go(func() error {
		t := time.NewTimer(opts.MaxTime)
		defer t.Stop()
		select {
		case <-t.C:
			log.Info("time budget spent, stopping search", "max_time", opts.MaxTime)
		case <-ctx.Done():
		case <-done:
		}
		stop.Store(true)
		return nil
	})

	root := sensor.New(recognition)
	workerErrs := make([]error, len(opts.Seeds))
	for i, seed := range opts.Seeds {
		w := &walker{id: i, ctx: ctx, predictor: p, events: events, stop: &stop, log: log}
		walk.Go(func() error {
			err := w.visit(root.Grown(seed), 0)
			if err != nil {
				workerErrs[i] = err
				if ctx.Err() == nil {
					log.Warn("search worker failed", "worker", i, "seed", string(seed), "err", err)
				}
			}
			return err
		})
	}
	go func() {
		_ = walk.Wait()
		close(events)
	}()

	log.Info("search started", "workers", len(opts.Seeds), "max_time", opts.MaxTime, "max_solutions", opts.MaxSolutions)

	var (
		accepted []Candidate
		st       Stats
	)
	for ev := range events {
		if opts.Observer != nil {
			opts.Observer(ev)
		}
		switch e := ev.(type) {
		case Depth:
			st.Visited++
			st.MaxDepth = max(st.MaxDepth, e.Depth)
			metrics.SearchEvents.WithLabelValues("depth").Inc()
		case Pruned:
			st.Pruned++
			metrics.SearchEvents.WithLabelValues("pruned").Inc()
		case Solution:
			st.Evaluated++
			metrics.SearchEvents.WithLabelValues("solution").Inc()
			if len(accepted) >= opts.MaxSolutions {
				continue
			}
			c := e.Candidate
			v := scoring.Explain(c.Sequence, c.Scores, c.Folds, opts.Thresholds)
			if !v.Accepted() {
				log.Debug("rejected candidate", "sequence", c.Sequence.String(),
					"ratio", v.RatioValue, "unknown", v.UnknownValue, "folds", v.Folds,
					"ratio_ok", v.Ratio, "unknown_ok", v.Unknown, "folds_ok", v.FoldCount, "energy_ok", v.Energy)
				continue
			}
			accepted = append(accepted, c)
			metrics.SearchAccepted.Inc()
			log.Info("accepted candidate", "sequence", c.Sequence.String(), "depth", e.Depth,
				"on", c.Scores.Get(fold.BindingOn).Fraction, "off", c.Scores.Get(fold.NonbindingOff).Fraction)
			if len(accepted) == opts.MaxSolutions {
				stop.Store(true)
			}
		}
	}
	close(done)
	_ = timer.Wait()

	st.Accepted = len(accepted)
	st.Elapsed = time.Since(started)
	var errs []error
	for _, err := range workerErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	st.WorkerErrors = len(errs)
	log.Info("search finished", "accepted", st.Accepted, "visited", st.Visited,
		"evaluated", st.Evaluated, "max_depth", st.MaxDepth, "elapsed", st.Elapsed)

	if err := ctx.Err(); err != nil {
		metrics.Searches.WithLabelValues("cancelled").Inc()
		return accepted, st, err
	}
	if len(errs) == len(workerErrs) && len(accepted) == 0 {
		metrics.Searches.WithLabelValues("failed").Inc()
		return nil, st, fmt.Errorf("%w: %w", ErrAllWorkersFailed, errors.Join(errs...))
	}
	if len(accepted) == 0 {
		metrics.Searches.WithLabelValues("empty").Inc()
	} else {
		metrics.Searches.WithLabelValues("found").Inc()
	}
	return accepted, st, nil
}
