// internal/server/bus.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"fealden/internal/metrics"
	"fealden/internal/notify"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

// OutcomeTopic carries finished requests to the result writer and the
// notifier.
const OutcomeTopic = "fealden.outcomes"

type resultMessage struct {
	OutputDir string       `json:"output_dir"`
	Email     string       `json:"email,omitempty"`
	Result    api.ResultV1 `json:"result"`
}

// newBus returns a pub/sub whose Publish returns only after every
// subscriber acked, so a published outcome is on disk once Publish returns.
func newBus(log *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		slogAdapter{log: log},
	)
}

// ToResult converts an outcome to what is stored in the output directory.
func ToResult(o Outcome, withGain bool) api.ResultV1 {
	req := o.request()
	r := api.ResultV1{RequestID: req.ID, Recognition: req.Recognition}
	switch o := o.(type) {
	case Found:
		r.Status = api.StatusFound
		r.Solutions = writers.ToAPISolutions(o.Candidates, req.ID, withGain)
	case Failed:
		r.Status = api.StatusFailed
		reason := o.Reason
		if o.Detail != "" {
			reason += ": " + o.Detail
		}
		r.Failure = &api.FailureV1{RequestID: req.ID, Recognition: req.Recognition, Reason: reason}
	}
	return r
}

func publishOutcome(pub message.Publisher, o Outcome, withGain bool) error {
	req := o.request()
	payload, err := json.Marshal(resultMessage{OutputDir: req.OutputDir, Email: req.Email, Result: ToResult(o, withGain)})
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := pub.Publish(OutcomeTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

// writeResults stores every outcome it receives until messages is closed.
// Messages are acked even when writing fails; a retry would fail the same way.
func writeResults(messages <-chan *message.Message, log *slog.Logger) {
	for msg := range messages {
		var m resultMessage
		if err := json.Unmarshal(msg.Payload, &m); err != nil {
			log.Error("dropping undecodable outcome", "message_id", msg.UUID, "err", err)
			msg.Ack()
			continue
		}
		if err := writers.WriteResult(m.OutputDir, m.Result); err != nil {
			log.Error("could not write result", "request_id", m.Result.RequestID, "dir", m.OutputDir, "err", err)
			msg.Ack()
			continue
		}
		metrics.Outcomes.WithLabelValues(m.Result.Status).Inc()
		log.Info("result written", "request_id", m.Result.RequestID,
			"recognition", m.Result.Recognition, "status", m.Result.Status, "dir", m.OutputDir)
		msg.Ack()
	}
}

// notifyResults mails the requester of every outcome that carries an
// address. Delivery failures are logged and the message acked.
func notifyResults(messages <-chan *message.Message, sender notify.Sender, baseURL string, log *slog.Logger) {
	for msg := range messages {
		var m resultMessage
		if err := json.Unmarshal(msg.Payload, &m); err != nil || m.Email == "" {
			msg.Ack()
			continue
		}
		subject, body := notify.Compose(m.Result, baseURL)
		if err := sender.Send(m.Email, subject, body); err != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			log.Warn("notification not sent", "request_id", m.Result.RequestID, "err", err)
		} else {
			metrics.Notifications.WithLabelValues("sent").Inc()
			log.Info("notification sent", "request_id", m.Result.RequestID, "to", m.Email)
		}
		msg.Ack()
	}
}

// subscribe runs handle on the outcome topic. The returned channel closes
// once handle has returned.
func subscribe(ctx context.Context, sub message.Subscriber, handle func(<-chan *message.Message)) (<-chan struct{}, error) {
	messages, err := sub.Subscribe(ctx, OutcomeTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", OutcomeTopic, err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		handle(messages)
	}()
	return done, nil
}

// slogAdapter routes watermill's own logging into the process logger.
type slogAdapter struct {
	log *slog.Logger
}

func attrs(fields watermill.LogFields) []any {
	out := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

func (a slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(attrs(fields), "err", err)...)
}

func (a slogAdapter) Info(msg string, fields watermill.LogFields) {
	// watermill's info chatter is per message; keep it out of the daemon log
	a.log.Debug(msg, attrs(fields)...)
}

func (a slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, attrs(fields)...)
}

func (a slogAdapter) Trace(msg string, fields watermill.LogFields) {}

func (a slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return slogAdapter{log: a.log.With(attrs(fields)...)}
}
