// Command server runs the membership events HTTP API.
//
//	@title						Membership Events API
//	@version					1.0
//	@description				Event registration with capacity limits, an ordered waitlist and automatic promotion.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer JWT. Format: "Bearer {token}"
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"membershipevents/config"
	_ "membershipevents/docs"
	"membershipevents/internal/adapters/auth"
	"membershipevents/internal/bootstrap"
	delivery "membershipevents/internal/delivery/http"
	"membershipevents/internal/delivery/http/controllers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	storage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	// Projections may be stale after a crash between the canonical write and the view rewrite.
	if cfg.StorageBackend == config.BackendBadger {
		report, err := storage.Inscriptions.Resync(ctx)
		if err != nil {
			return err
		}
		logger.Info("startup resync complete",
			"records", report.Records,
			"event_views", report.EventViews,
			"user_views", report.UserViews,
			"ledgers_repaired", report.LedgersRepaired,
		)
	}

	registrations, err := bootstrap.NewRegistrationService(cfg, storage, logger)
	if err != nil {
		return err
	}

	mux := delivery.NewRouter(
		controllers.NewInscriptionController(logger, registrations),
		auth.NewJWTVerifier(cfg.JWTSecret),
		logger,
	)
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           delivery.NewHandler(mux, cfg.CORSAllowedOrigins, logger),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "backend", cfg.StorageBackend, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
