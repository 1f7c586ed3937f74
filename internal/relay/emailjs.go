package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	ToName     string
}

// EmailJS posts messages to the EmailJS REST API.
type EmailJS struct {
	cfg    EmailJSConfig
	client *http.Client
}

type EmailJSOption func(*EmailJS)

func WithHTTPClient(c *http.Client) EmailJSOption {
	return func(e *EmailJS) { e.client = c }
}

func NewEmailJS(cfg EmailJSConfig, opts ...EmailJSOption) *EmailJS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	e := &EmailJS{cfg: cfg, client: http.DefaultClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailJS) Send(ctx context.Context, m Message) error {
	if e.cfg.ServiceID == "" || e.cfg.TemplateID == "" || e.cfg.PublicKey == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:  e.cfg.ServiceID,
		TemplateID: e.cfg.TemplateID,
		UserID:     e.cfg.PublicKey,
		TemplateParams: map[string]string{
			"from_name":  m.Name,
			"from_email": m.Email,
			"subject":    m.Subject,
			"message":    m.Body,
			"to_name":    e.cfg.ToName,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RelayError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return nil
}
