// internal/server/server.go
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"fealden/internal/notify"
	"fealden/internal/queue"
	"fealden/internal/search"
	"fealden/pkg/api"
)

// Queue is the work queue the daemon drains. Put is used to hand back
// requests that were claimed but not finished at shutdown.
type Queue interface {
	Get(ctx context.Context) (api.RequestV1, error)
	Put(req api.RequestV1) (string, error)
}

// DefaultRetryDelay is the pause after a failed queue read.
const DefaultRetryDelay = time.Second

// Config controls the daemon.
type Config struct {
	Workers int            // concurrent searches (>=1)
	Search  search.Options // defaults for every request
	Gain    bool           // store gain curves with solutions

	// RetryDelay is the pause after a queue error that is not fatal, such
	// as a request file that cannot be claimed. Zero means DefaultRetryDelay.
	RetryDelay time.Duration

	// Notifier, when set, mails requesters that left an address. BaseURL
	// is the public root of the HTTP front end used in the notice.
	Notifier notify.Sender
	BaseURL  string
}

// Server runs searches for queued requests.
type Server struct {
	queue     Queue
	predictor search.Predictor
	cfg       Config
	log       *slog.Logger
}

func New(q Queue, p search.Predictor, cfg Config, log *slog.Logger) *Server {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{queue: q, predictor: p, cfg: cfg, log: log}
}

// Run serves requests until ctx is cancelled or the queue becomes unusable.
// Requests claimed but not finished are put back on the queue. It returns
// ctx.Err() after a cancellation, otherwise the first fatal error.
func (s *Server) Run(ctx context.Context) error {
	bus := newBus(s.log)
	defer func() { _ = bus.Close() }()

	// The writer outlives ctx so outcomes finished during shutdown are stored.
	subCtx, stopSub := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSub()
	written, err := subscribe(subCtx, bus, func(m <-chan *message.Message) { writeResults(m, s.log) })
	if err != nil {
		return err
	}
	var notified <-chan struct{}
	if s.cfg.Notifier != nil {
		n, err := subscribe(subCtx, bus, func(m <-chan *message.Message) {
			notifyResults(m, s.cfg.Notifier, s.cfg.BaseURL, s.log)
		})
		if err != nil {
			return err
		}
		notified = n
	}

	jobs := make(chan api.RequestV1, s.cfg.Workers*2)
	results := make(chan Outcome, s.cfg.Workers*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(s.cfg.Workers)
	for w := 0; w < s.cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case req, ok := <-jobs:
					if !ok {
						return
					}
					out, finished := s.process(ctx, req)
					if !finished {
						s.requeue(req)
						continue
					}
					// the collector drains results until it is closed
					results <- out
				}
			}
		}()
	}

	// Collector
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for out := range results {
			if err := publishOutcome(bus, out, s.cfg.Gain); err != nil {
				s.log.Error("outcome lost", "request_id", out.request().ID, "err", err)
				if cerr == nil {
					cerr = err
				}
			}
		}
	}()

	s.log.Info("daemon started", "workers", s.cfg.Workers)

	// Feed work
	var ferr error
feed:
	for {
		req, err := s.queue.Get(ctx)
		switch {
		case ctx.Err() != nil:
			if err == nil {
				s.requeue(req)
			}
			break feed
		case errors.Is(err, queue.ErrNotDirectory):
			s.log.Error("work queue unusable", "err", err)
			ferr = err
			break feed
		case err != nil:
			s.log.Warn("skipping queued request", "err", err, "retry_in", s.cfg.RetryDelay)
			select {
			case <-ctx.Done():
				break feed
			case <-time.After(s.cfg.RetryDelay):
			}
			continue
		}
		s.log.Info("request claimed", "request_id", req.ID, "recognition", req.Recognition)
		select {
		case <-ctx.Done():
			s.requeue(req)
			break feed
		case jobs <- req:
		}
	}

	close(jobs)
	wg.Wait()
	for req := range jobs {
		s.requeue(req)
	}
	close(results)
	cwg.Wait()

	stopSub()
	<-written
	if s.cfg.Notifier != nil {
		<-notified
	}
	s.log.Info("daemon stopped")

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ferr != nil {
		return ferr
	}
	return cerr
}

// process runs one request. finished is false when ctx was cancelled before
// the search could conclude.
func (s *Server) process(ctx context.Context, req api.RequestV1) (out Outcome, finished bool) {
	log := s.log.With("request_id", req.ID, "recognition", req.Recognition)
	if err := req.Validate(); err != nil {
		log.Warn("rejecting request", "err", err)
		return Failed{Request: req, Reason: ReasonInvalid, Detail: err.Error()}, true
	}
	opts := RequestOptions(s.cfg.Search, req)
	opts.Logger = log

	cands, st, err := search.Search(ctx, req.Recognition, opts, s.predictor)
	switch {
	case ctx.Err() != nil:
		return nil, false
	case err != nil:
		return Failed{Request: req, Reason: ReasonPredictor, Detail: err.Error()}, true
	case len(cands) == 0:
		return Failed{Request: req, Reason: ReasonTimedOut}, true
	default:
		return Found{Request: req, Candidates: cands, Stats: st}, true
	}
}

func (s *Server) requeue(req api.RequestV1) {
	if _, err := s.queue.Put(req); err != nil {
		s.log.Error("could not requeue unfinished request", "request_id", req.ID, "err", err)
		return
	}
	s.log.Info("requeued unfinished request", "request_id", req.ID)
}
