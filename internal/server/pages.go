package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
	"github.com/BernardRegaspi/portfolio/internal/transition"
)

func (s *Server) setupPageRoutes(r *gin.RouterGroup) {
	r.GET(navigation.HomePath, s.home)

	for _, route := range navigation.Services() {
		r.GET(route.Path, s.servicePage(route))
	}

	for _, alias := range navigation.Aliases() {
		target := alias.AliasOf
		r.GET(alias.Path, func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, target)
		})
	}
}

func (s *Server) home(c *gin.Context) {
	storage := s.visitStorage(c)
	m := preloader.New(storage, preloader.WithLogger(s.logger))
	if err := s.consumeReloadMarker(c, storage, m); err != nil {
		s.logger.Warn("applying reload marker", "error", err)
		s.metrics.SessionAPIErrors.WithLabelValues("reload").Inc()
	}
	variant, err := m.Start(c.Request.Context())
	if err != nil {
		s.logger.Warn("visit flags unavailable, playing full preloader", "error", err)
		s.metrics.SessionAPIErrors.WithLabelValues("start").Inc()
	}
	s.metrics.PreloaderStarts.WithLabelValues(string(variant)).Inc()

	route, _ := navigation.Lookup(navigation.HomePath)
	s.renderPage(c, http.StatusOK, route, gin.H{
		"preloader":      string(variant),
		"shortVisibleMs": preloader.ShortVisible.Milliseconds(),
		"shortFadeMs":    preloader.ShortFade.Milliseconds(),
		"toolGroups":     s.site.ToolCategories(),
		"certificates":   s.site.Certificates,
		"services":       s.site.Services,
		"featured":       s.site.ProjectsFor("fullstack"),
	})
}

func (s *Server) servicePage(route navigation.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, _ := s.site.ServiceFor(route.Path)
		s.renderPage(c, http.StatusOK, route, gin.H{
			"service":  svc,
			"projects": s.site.ProjectsFor(route.Category),
		})
	}
}

func (s *Server) notFound(c *gin.Context) {
	s.renderPage(c, http.StatusNotFound, navigation.Route{
		Path:     c.Request.URL.Path,
		Title:    "Not Found",
		Template: "not-found.html",
	}, nil)
}

// renderPage renders a full page with the overlay in the state it must be in
// on first paint and the transition plan the page script replays.
func (s *Server) renderPage(c *gin.Context, status int, route navigation.Route, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	initial := s.watcher.InitialState(route.Path)

	data["site"] = s.site
	data["route"] = route
	data["path"] = route.Path
	data["menu"] = navigation.All()
	data["overlayRows"] = overlayRows(s.plan.Rows, s.plan.Cols, initial)
	data["covered"] = initial.Visible
	data["plan"] = s.planJSON
	data["year"] = time.Now().Year()

	s.metrics.PageViews.WithLabelValues(metricRoute(route, status)).Inc()
	c.HTML(status, route.Template, data)
}

// overlayRows lays the blocks of an overlay in state st out row by row.
func overlayRows(rows, cols int, st transition.State) [][]transition.Block {
	o := transition.NewOverlay(rows, cols)
	o.Set(st)
	out := make([][]transition.Block, rows)
	for _, b := range o.Snapshot() {
		out[b.Row] = append(out[b.Row], b)
	}
	return out
}

func metricRoute(route navigation.Route, status int) string {
	if status == http.StatusNotFound {
		return "not_found"
	}
	return route.Path
}
