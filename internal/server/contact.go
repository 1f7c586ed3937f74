package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/relay"
)

const (
	contactSuccess = "Message sent successfully! I'll get back to you soon."
	contactFailure = "Something went wrong. Please try again."
	contactInvalid = "Please fill in every field with a valid email address."
)

type contactForm struct {
	Name    string `form:"name" binding:"required,max=200"`
	Email   string `form:"email" binding:"required,email,max=320"`
	Subject string `form:"subject" binding:"required,max=300"`
	Message string `form:"message" binding:"required,max=5000"`
	Source  string `form:"source" binding:"max=100"`
}

func (s *Server) setupContactRoutes(r *gin.RouterGroup) {
	r.POST("/contact", s.contact)
}

// contact relays a submission and answers with an HTML fragment for the form
// to swap in. Every submission is stored, delivered or not.
func (s *Server) contact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		s.metrics.ContactMessages.WithLabelValues("invalid").Inc()
		c.HTML(http.StatusBadRequest, "contact-status.html", gin.H{"error": contactInvalid})
		return
	}

	msg := relay.Message{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Subject: strings.TrimSpace(form.Subject),
		Body:    strings.TrimSpace(form.Message),
	}

	ctx := c.Request.Context()
	if s.cfg.Relay.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Relay.Timeout)
		defer cancel()
	}
	sendErr := s.relay.Send(ctx, msg)

	record := db.ContactMessage{
		Source:    form.Source,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Body,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		record.Error = sendErr.Error()
	}
	if _, err := s.db.SaveMessage(c.Request.Context(), record); err != nil {
		s.logger.Error("storing contact message", "error", err)
	}

	if sendErr != nil {
		outcome := "failed"
		if errors.Is(sendErr, relay.ErrNotConfigured) {
			outcome = "unconfigured"
		}
		s.logger.Error("relaying contact message", "error", sendErr, "source", form.Source)
		s.metrics.ContactMessages.WithLabelValues(outcome).Inc()
		c.HTML(http.StatusOK, "contact-status.html", gin.H{"error": contactFailure})
		return
	}

	s.logger.Info("contact message sent", "source", form.Source)
	s.metrics.ContactMessages.WithLabelValues("sent").Inc()
	c.HTML(http.StatusOK, "contact-status.html", gin.H{"success": contactSuccess})
}
