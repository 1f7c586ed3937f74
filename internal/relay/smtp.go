package relay

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP delivers messages through an authenticated mail server.
type SMTP struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if s.cfg.User == "" || s.cfg.Pass == "" || s.cfg.To == "" {
		return fmt.Errorf("SMTP credentials not configured: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := s.sendMail(addr, auth, s.cfg.User, []string{s.cfg.To}, s.compose(m)); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// compose builds the RFC 822 message. Header values are stripped of line
// breaks so form input cannot inject headers.
func (s *SMTP) compose(m Message) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(m.Subject))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, m.Email, m.Subject, m.Body)

	return []byte("To: " + s.cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(m.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
