package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BernardRegaspi/portfolio/internal/preloader"
)

const sessionKey = "sessionID"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// sessionMiddleware gives every browser a session id in a cookie without
// Max-Age, so it lives exactly as long as the browser session.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cfg.Session.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.cfg.Session.CookieName, id, 0, "/", "", c.Request.TLS != nil, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

// visitStorage is the session-scoped flag storage of the request.
func (s *Server) visitStorage(c *gin.Context) preloader.Storage {
	return s.visits.Scope(c.GetString(sessionKey))
}
