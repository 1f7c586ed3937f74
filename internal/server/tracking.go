package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/db"
)

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin",
	"/api/",
	"/favicon",
	"/privacy",
	"/metrics",
	"/healthz",
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashIP is stable for one salt, so unique visitors can be counted without
// storing addresses.
func hashIP(salt, ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func tracked(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return false
		}
	}
	// Do Not Track
	return r.Header.Get("DNT") != "1"
}

// visitorTracking records successful page views in the background.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tracked(c.Request) {
			c.Next()
			return
		}
		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		v := db.Visitor{
			HashedIP:  hashIP(s.admin.salt, c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      c.Request.URL.Path,
		}
		s.goBackground(func(ctx context.Context) {
			if err := s.db.RecordVisit(ctx, v); err != nil {
				s.logger.Error("recording visitor", "error", err)
			}
		})
	}
}
