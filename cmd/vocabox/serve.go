package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/vocabox/internal/bootstrap"
	"github.com/at-ishikawa/vocabox/internal/config"
	"github.com/at-ishikawa/vocabox/internal/progress"
	"github.com/at-ishikawa/vocabox/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review and progress API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(map[string]*pflag.Flag{
				"server.port": cmd.Flags().Lookup("port"),
			})
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("port", 8080, "port to listen on")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	authenticator, err := server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("server.NewAuthenticator() > %w", err)
	}
	deps, err := newDependencies(cfg)
	if err != nil {
		return err
	}

	app := bootstrap.New(shutdownTimeout)
	app.AddShutdownHook("database", func(context.Context) error {
		return deps.Close()
	})

	if cfg.Progress.RecomputeInterval > 0 {
		scheduler := progress.NewScheduler(deps.aggregator, cfg.Progress.RecomputeInterval)
		if err := scheduler.Start(); err != nil {
			return errors.Join(fmt.Errorf("scheduler.Start() > %w", err), deps.Close())
		}
		app.AddShutdownHook("progress scheduler", func(context.Context) error {
			scheduler.Stop()
			return nil
		})
	}

	review := server.NewReviewHandler(deps.sessionService(cfg), deps.studies, deps.store)
	app.AddShutdownHook("review sessions", review.Shutdown)

	opts := server.Options{AllowedOrigins: cfg.Server.CORS.AllowedOrigins}
	if cfg.Server.RateLimit.RequestsPerSecond > 0 {
		opts.RateLimiter = server.NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.NewHandler(review, server.NewProgressHandler(deps.aggregator), authenticator, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr, "database", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}
