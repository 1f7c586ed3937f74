// Package relay delivers contact form messages through a third-party email relay.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BernardRegaspi/portfolio/internal/config"
)

// ErrNotConfigured is returned when no relay is set up.
var ErrNotConfigured = errors.New("relay: not configured")

// Message is one contact form submission.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// Sender delivers a message. Delivery is attempted once; callers never retry.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// RelayError is a response the relay rejected.
type RelayError struct {
	Status int
	Body   string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay rejected message: %d %s", e.Status, e.Body)
}

// Noop refuses every message.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return ErrNotConfigured }

// New builds the sender selected by the configuration.
func New(cfg config.RelayConfig) (Sender, error) {
	switch cfg.Provider {
	case config.RelayEmailJS:
		return NewEmailJS(EmailJSConfig{
			Endpoint:   cfg.Endpoint,
			ServiceID:  cfg.ServiceID,
			TemplateID: cfg.TemplateID,
			PublicKey:  cfg.PublicKey,
			ToName:     cfg.ToName,
		}, WithHTTPClient(&http.Client{Timeout: cfg.Timeout})), nil
	case config.RelaySMTP:
		return NewSMTP(SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.SMTP.To,
		}), nil
	case config.RelayNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown relay provider %q", cfg.Provider)
	}
}
