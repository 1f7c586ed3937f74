package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/config"
)

const (
	adminCookie = "admin_token"

	devAdminUsername = "admin"
	devAdminPassword = "admin123"
)

// adminAuth holds the per-process admin token and the salt used to hash
// visitor addresses. Both are regenerated on every start.
type adminAuth struct {
	username string
	password string
	token    string
	salt     string
	enabled  bool
}

func newAdminAuth(cfg config.AdminConfig, mode string, logger *slog.Logger) (*adminAuth, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	salt, err := generateToken()
	if err != nil {
		return nil, err
	}
	a := &adminAuth{
		username: cfg.Username,
		password: cfg.Password,
		token:    token,
		salt:     salt,
		enabled:  true,
	}

	if a.username == "" || a.password == "" {
		if mode != gin.DebugMode {
			logger.Warn("admin credentials not configured, admin area disabled")
			a.enabled = false
			return a, nil
		}
		if a.username == "" {
			a.username = devAdminUsername
			logger.Warn("using default admin username, set PORTFOLIO_ADMIN__USERNAME")
		}
		if a.password == "" {
			a.password = devAdminPassword
			logger.Warn("using default admin password, set PORTFOLIO_ADMIN__PASSWORD")
		}
	}
	logger.Info("admin access available", "path", "/admin/login")
	return a, nil
}

func (a *adminAuth) check(username, password string) bool {
	if !a.enabled {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if !s.admin.enabled || err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.admin.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
			"site":  s.site,
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		data := gin.H{"title": "Admin Login"}
		if !s.admin.enabled {
			data["error"] = "Admin access is disabled"
		}
		c.HTML(http.StatusOK, "admin-login.html", data)
	})

	r.POST("/admin/login", func(c *gin.Context) {
		who := hashIP(s.admin.salt, c.ClientIP())
		if !s.admin.check(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn("failed admin login", "client", who)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.admin.token, int((24 * time.Hour).Seconds()), "/admin", "", c.Request.TLS != nil, true)
		s.logger.Info("admin login", "client", who)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
		s.logger.Info("admin logout", "client", hashIP(s.admin.salt, c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	g := r.Group("/admin")
	g.Use(s.adminAuthMiddleware())

	g.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context(), time.Now())
		if err != nil {
			s.logger.Error("loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
	})

	g.GET("/api/stats", s.adminStatsJSON)

	g.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.db.Visitors(c.Request.Context(), 200)
		if err != nil {
			s.logger.Error("loading visitors", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load visitors"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	g.GET("/messages", func(c *gin.Context) {
		messages, err := s.db.Messages(c.Request.Context(), 200)
		if err != nil {
			s.logger.Error("loading messages", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load messages"})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{"messages": messages})
	})

	g.DELETE("/messages/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
			return
		}
		found, err := s.db.DeleteMessage(c.Request.Context(), id)
		if err != nil {
			s.logger.Error("deleting message", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		s.logger.Info("message deleted by admin", "id", id)
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
	})

	g.POST("/privacy/cleanup", func(c *gin.Context) {
		s.goBackground(s.cleanup)
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})

	g.GET("/export/stats", func(c *gin.Context) {
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", "client", hashIP(s.admin.salt, c.ClientIP()))
		s.adminStatsJSON(c)
	})
}

func (s *Server) adminStatsJSON(c *gin.Context) {
	stats, err := s.db.Stats(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
