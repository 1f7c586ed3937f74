package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BernardRegaspi/portfolio/internal/config"
	"github.com/BernardRegaspi/portfolio/internal/content"
	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/metrics"
	"github.com/BernardRegaspi/portfolio/internal/relay"
	"github.com/BernardRegaspi/portfolio/internal/server"
	"github.com/BernardRegaspi/portfolio/internal/visitstore"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		logger := newLogger(cfg)

		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		visits, err := openVisitStore(ctx, cfg, database, logger)
		if err != nil {
			return err
		}
		defer visits.Close()

		sender, err := relay.New(cfg.Relay)
		if err != nil {
			return fmt.Errorf("configuring contact relay: %w", err)
		}
		if cfg.Relay.Provider == config.RelayNone {
			logger.Warn("contact relay disabled, messages are only stored")
		}

		site, err := content.Load()
		if err != nil {
			return fmt.Errorf("loading site content: %w", err)
		}

		srv, err := server.New(server.Deps{
			Config:  cfg,
			Logger:  logger,
			DB:      database,
			Visits:  visits,
			Relay:   sender,
			Content: site,
			Metrics: metrics.New(),
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		logger.Info("starting portfolio",
			"version", Version,
			"addr", cfg.Addr(),
			"mode", cfg.Server.Mode,
			"session_backend", cfg.Session.Backend,
			"relay", cfg.Relay.Provider,
			"database", cfg.Database.Path,
		)
		return srv.Run(ctx)
	},
}

func openVisitStore(ctx context.Context, cfg *config.Config, database *db.DB, logger *slog.Logger) (visitstore.Backend, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return visitstore.NewMemory(visitstore.WithMemoryTTL(cfg.Session.TTL)), nil
	case config.BackendRedis:
		r := visitstore.NewRedis(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB,
			visitstore.WithTTL(cfg.Session.TTL))
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Session.RedisAddr, err)
		}
		logger.Info("visit flags in redis", "addr", cfg.Session.RedisAddr)
		return r, nil
	default:
		return visitstore.NewSQLite(database), nil
	}
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
