// Package notify mails requesters when their queued search has finished.
package notify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"

	"fealden/internal/config"
	"fealden/pkg/api"
)

// ErrSend wraps every delivery failure.
var ErrSend = errors.New("notify: send failed")

// Sender delivers one plain-text message.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTP sends through one relay, dialling per message.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP returns a sender for cfg, or nil when cfg.Host is empty.
func NewSMTP(cfg config.Mail) *SMTP {
	if cfg.Host == "" {
		return nil
	}
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTP) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSend, to, err)
	}
	return nil
}

// Compose renders the notice for r. baseURL, when set, is the public root
// of the HTTP front end.
func Compose(r api.ResultV1, baseURL string) (subject, body string) {
	var b strings.Builder
	switch r.Status {
	case api.StatusFound:
		subject = fmt.Sprintf("fealden: sensor found for %s", r.Recognition)
		fmt.Fprintf(&b, "Your search for recognition site %s found %d sensor(s).\n\n", r.Recognition, len(r.Solutions))
		for _, s := range r.Solutions {
			fmt.Fprintf(&b, "  %s  stem1=%s stem2=%s ratio=%.3f Ks=%.3g\n", s.Sequence, s.Stem1, s.Stem2, s.Ratio, s.BindingConstant)
		}
	default:
		subject = fmt.Sprintf("fealden: no sensor for %s", r.Recognition)
		reason := "unknown"
		if r.Failure != nil {
			reason = r.Failure.Reason
		}
		fmt.Fprintf(&b, "Your search for recognition site %s did not find a sensor.\nReason: %s\n", r.Recognition, reason)
	}
	if baseURL != "" {
		link, err := url.JoinPath(baseURL, "api/v1/solutions", r.Recognition)
		if err == nil {
			fmt.Fprintf(&b, "\nFull result: %s\n", link)
		}
	}
	fmt.Fprintf(&b, "\nRequest %s\n", r.RequestID)
	return subject, b.String()
}
