package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
)

const (
	// reloadCookie is written by the page on its way out of home. Unlike the
	// beacon it is guaranteed to be on the reload's own request.
	reloadCookie = "portfolio_reload"
	// keyReloadToken remembers the last marker applied from the cookie so the
	// backup beacon carrying the same marker is dropped.
	keyReloadToken = "reloadToken"
)

type unloadRequest struct {
	Path  string `json:"path" form:"path" binding:"required"`
	Token string `json:"token" form:"token" binding:"max=64"`
}

type completeRequest struct {
	Variant preloader.Variant `json:"variant" form:"variant" binding:"required,oneof=full short"`
}

func (s *Server) setupSessionRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	api.POST("/session/unload", s.sessionUnload)
	api.POST("/session/preloader-complete", s.preloaderComplete)
	api.GET("/session/state", s.sessionState)
	api.GET("/transition/plan", s.transitionPlan)
}

// consumeReloadMarker applies and clears the reload cookie left by the
// previous page. It runs before the preloader decides on a variant.
func (s *Server) consumeReloadMarker(c *gin.Context, storage preloader.Storage, m *preloader.Machine) error {
	token, err := c.Cookie(reloadCookie)
	if err != nil || token == "" {
		return nil
	}
	c.SetCookie(reloadCookie, "", -1, "/", "", false, false)

	ctx := c.Request.Context()
	if err := storage.Set(ctx, keyReloadToken, token); err != nil {
		return err
	}
	return m.Unload(ctx, navigation.HomePath)
}

// sessionUnload is the target of the page's unload beacon, a backup for the
// reload cookie. The page only sends it when the browser itself is leaving,
// never for an intercepted in-site navigation.
func (s *Server) sessionUnload(c *gin.Context) {
	var req unloadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storage := s.visitStorage(c)
	if req.Token != "" {
		applied, ok, err := storage.Get(c.Request.Context(), keyReloadToken)
		if err == nil && ok && applied == req.Token {
			c.Status(http.StatusNoContent)
			return
		}
	}

	m := preloader.New(storage, preloader.WithLogger(s.logger))
	if err := m.Unload(c.Request.Context(), navigation.Canonical(req.Path)); err != nil {
		s.logger.Error("recording unload", "error", err)
		s.metrics.SessionAPIErrors.WithLabelValues("unload").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record unload"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) preloaderComplete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := preloader.New(s.visitStorage(c), preloader.WithLogger(s.logger))
	m.Resume(req.Variant)
	if err := m.Complete(c.Request.Context()); err != nil {
		s.logger.Error("completing preloader", "error", err)
		s.metrics.SessionAPIErrors.WithLabelValues("complete").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record preloader"})
		return
	}
	s.metrics.PreloaderDone.Inc()
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionState(c *gin.Context) {
	st, err := preloader.LoadState(c.Request.Context(), s.visitStorage(c))
	if err != nil {
		s.metrics.SessionAPIErrors.WithLabelValues("state").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) transitionPlan(c *gin.Context) {
	s.metrics.TransitionPlans.Inc()
	c.JSON(http.StatusOK, s.plan)
}
