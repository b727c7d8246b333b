// Package httpapi is the JSON front end of the daemon: submit a search,
// poll its result, and scrape metrics.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fealden/internal/metrics"
	"fealden/internal/sensor"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

// Queue accepts search requests.
type Queue interface {
	Put(req api.RequestV1) (string, error)
	Len() int
}

// SearchRequest is the body of POST /api/v1/searches. Omitted criteria
// fall back to the daemon's defaults.
type SearchRequest struct {
	Recognition    string   `json:"recognition"`
	Email          string   `json:"email,omitempty"`
	MaxTime        float64  `json:"max_time,omitempty"` // seconds
	BindingRatioLo *float64 `json:"binding_ratio_lo,omitempty"`
	BindingRatioHi *float64 `json:"binding_ratio_hi,omitempty"`
	MaxUnknown     *float64 `json:"max_unknown,omitempty"`
	NumFoldsLo     *int     `json:"num_folds_lo,omitempty"`
	NumFoldsHi     *int     `json:"num_folds_hi,omitempty"`
	MaxEnergy      *float64 `json:"max_energy,omitempty"`
	NumSolutions   int      `json:"num_solutions,omitempty"`
}

// SubmitResponse is returned by POST /api/v1/searches.
type SubmitResponse struct {
	Status      string `json:"status"`
	RequestID   string `json:"request_id,omitempty"`
	Recognition string `json:"recognition"`
	Location    string `json:"location"`
}

type handler struct {
	queue   Queue
	store   writers.SolutionStore
	maxTime time.Duration
	log     *slog.Logger
}

// New builds the fiber app. maxTime is the search budget of requests that
// do not name one.
func New(q Queue, store writers.SolutionStore, maxTime time.Duration, log *slog.Logger) *fiber.App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &handler{queue: q, store: store, maxTime: maxTime, log: log}

	app := fiber.New(fiber.Config{
		BodyLimit:             64 << 10,
		DisableStartupMessage: true,
	})
	v1 := app.Group("/api/v1")
	v1.Post("/searches", h.submit)
	v1.Get("/solutions/:recognition", h.solution)
	app.Get("/healthz", h.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdown); err != nil {
			return err
		}
		return <-errc
	}
}

func errorBody(msg string) fiber.Map { return fiber.Map{"error": msg} }

func location(recognition string) string { return "/api/v1/solutions/" + recognition }

func (h *handler) submit(c *fiber.Ctx) error {
	var body SearchRequest
	if err := c.BodyParser(&body); err != nil {
		metrics.QueueRequests.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("malformed body: " + err.Error()))
	}
	recog, err := sensor.ParseRecognition(body.Recognition)
	if err != nil {
		metrics.QueueRequests.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
	}

	dir, err := h.store.Prepare(recog)
	if err != nil {
		h.log.Error("could not create output dir", "recognition", recog, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("could not create output directory"))
	}
	if writers.Solved(dir) {
		metrics.QueueRequests.WithLabelValues("cached").Inc()
		c.Location(location(recog))
		return c.Status(fiber.StatusOK).JSON(SubmitResponse{Status: api.StatusFound, Recognition: recog, Location: location(recog)})
	}

	req := api.NewRequest(recog, dir, h.maxTime)
	req.Email = body.Email
	if body.MaxTime > 0 {
		req.MaxTime = body.MaxTime
	}
	if body.NumSolutions > 0 {
		req.NumSolutions = body.NumSolutions
	}
	req.BindingRatioLo, req.BindingRatioHi = body.BindingRatioLo, body.BindingRatioHi
	req.MaxUnknown = body.MaxUnknown
	req.NumFoldsLo, req.NumFoldsHi = body.NumFoldsLo, body.NumFoldsHi
	req.MaxEnergy = body.MaxEnergy
	if err := req.Validate(); err != nil {
		metrics.QueueRequests.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
	}

	if err := writers.ClearFailure(dir); err != nil {
		h.log.Error("could not clear earlier failure", "recognition", recog, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("could not queue request"))
	}
	if _, err := h.queue.Put(req); err != nil {
		h.log.Error("could not queue request", "request_id", req.ID, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("could not queue request"))
	}
	h.log.Info("request queued", "request_id", req.ID, "recognition", recog)
	c.Location(location(recog))
	return c.Status(fiber.StatusAccepted).JSON(SubmitResponse{
		Status:      api.StatusPending,
		RequestID:   req.ID,
		Recognition: recog,
		Location:    location(recog),
	})
}

func (h *handler) solution(c *fiber.Ctx) error {
	recog, err := sensor.ParseRecognition(c.Params("recognition"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
	}
	r, err := h.store.Lookup(recog)
	switch {
	case errors.Is(err, writers.ErrUnknownRecognition):
		return c.Status(fiber.StatusNotFound).JSON(errorBody(err.Error()))
	case err != nil:
		h.log.Error("could not read result", "recognition", recog, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("could not read result"))
	case r.Status == api.StatusPending:
		c.Set(fiber.HeaderRetryAfter, "5")
		return c.Status(fiber.StatusAccepted).JSON(r)
	default:
		return c.JSON(r)
	}
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "queued": h.queue.Len()})
}
