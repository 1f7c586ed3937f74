// Package server wires the portfolio's pages, session API, contact form and
// admin area onto a gin engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BernardRegaspi/portfolio/internal/config"
	"github.com/BernardRegaspi/portfolio/internal/content"
	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/logging"
	"github.com/BernardRegaspi/portfolio/internal/metrics"
	"github.com/BernardRegaspi/portfolio/internal/relay"
	"github.com/BernardRegaspi/portfolio/internal/transition"
	"github.com/BernardRegaspi/portfolio/internal/visitstore"
)

// Deps are the collaborators a Server needs. Logger and Metrics default when nil.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *db.DB
	Visits  visitstore.Backend
	Relay   relay.Sender
	Content *content.Site
	Metrics *metrics.Metrics
}

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *db.DB
	visits  visitstore.Backend
	relay   relay.Sender
	site    *content.Site
	metrics *metrics.Metrics

	animator *transition.Animator
	watcher  *transition.Watcher
	plan     transition.Plan
	planJSON template.JS

	admin  *adminAuth
	engine *gin.Engine
	bg     sync.WaitGroup
}

// New builds the server and its routes.
func New(d Deps) (*Server, error) {
	if d.Config == nil || d.DB == nil || d.Visits == nil || d.Relay == nil || d.Content == nil {
		return nil, errors.New("server: config, db, visits, relay and content are required")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	s := &Server{
		cfg:     d.Config,
		logger:  d.Logger,
		db:      d.DB,
		visits:  d.Visits,
		relay:   d.Relay,
		site:    d.Content,
		metrics: d.Metrics,
	}

	overlay := transition.NewOverlay(transition.DefaultRows, transition.DefaultCols)
	s.animator = transition.NewAnimator(overlay, transition.WithLogger(s.logger))
	s.watcher = transition.NewWatcher(overlay, s.animator,
		transition.WithRevealDelay(s.cfg.Transition.RevealDelay),
		transition.WithWatcherLogger(s.logger),
	)
	s.plan = transition.NewPlan(s.animator, s.watcher)
	raw, err := json.Marshal(s.plan)
	if err != nil {
		return nil, fmt.Errorf("encoding transition plan: %w", err)
	}
	s.planJSON = template.JS(raw)

	s.admin, err = newAdminAuth(s.cfg.Admin, s.cfg.Server.Mode, s.logger)
	if err != nil {
		return nil, err
	}

	gin.SetMode(s.cfg.Server.Mode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.LoadHTMLGlob(filepath.Join(s.cfg.Server.TemplatesDir, "*.html"))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.engine
	r.Static("/static", s.cfg.Server.StaticDir)
	r.Static("/images", s.cfg.Server.ImagesDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	site := r.Group("/")
	site.Use(s.sessionMiddleware(), s.visitorTracking())
	s.setupPageRoutes(site)
	s.setupSessionRoutes(site)
	s.setupContactRoutes(site)

	s.setupAdminRoutes(r)
	r.NoRoute(s.sessionMiddleware(), s.notFound)
}

// Handler is the http.Handler serving the site.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.goBackground(s.cleanup)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Close waits for background work such as visitor recording.
func (s *Server) Close() {
	s.watcher.Stop()
	s.bg.Wait()
}

func (s *Server) goBackground(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// cleanup drops visitor rows older than a year and visit flags past the session TTL.
func (s *Server) cleanup(ctx context.Context) {
	now := time.Now()
	n, err := s.db.CleanupVisitors(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		s.logger.Error("visitor cleanup failed", "error", err)
	} else if n > 0 {
		s.logger.Info("privacy cleanup removed visitor records", "count", n)
	}

	if s.cfg.Session.TTL > 0 {
		if _, err := s.db.PurgeFlags(ctx, now.Add(-s.cfg.Session.TTL)); err != nil {
			s.logger.Error("visit flag purge failed", "error", err)
		}
	}
}
