package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/internal/config"
	"github.com/dfryer1193/flog/internal/metrics"
	"github.com/dfryer1193/flog/internal/middleware"
	"github.com/dfryer1193/flog/internal/rest"
	"github.com/dfryer1193/flog/internal/scheduler"
	"github.com/dfryer1193/flog/internal/watch"
	webhook "github.com/dfryer1193/flog/webhook/http"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Depending on configuration, posts are synced once at
startup, on a cron schedule, on GitHub push webhooks and on local file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := a.services.Platform.Seed(ctx); err != nil {
		return err
	}

	runner := application.NewSyncRunner(a.engine)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to gracefully close sync runner")
		}
	}()

	if cfg.Sync.OnStartup {
		runner.RunNow("startup")
	}

	if cfg.Sync.Schedule != "" {
		sched, err := scheduler.New(cfg.Sync.Schedule, runner.RunNow)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	if cfg.Sync.Watch {
		watcher, err := watch.New(cfg.Posts.Dir, cfg.Sync.Debounce, runner.Trigger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop file watcher")
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: newRouter(cfg, a, runner),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

func newRouter(cfg *config.Config, a *app, runner *application.SyncRunner) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.LoggingMiddleware(),
		gin.CustomRecovery(middleware.HandlePanics()),
		a.metrics.Middleware(),
	)

	if !cfg.Auth.Enabled() {
		log.Warn().Msg("Admin credentials are not configured, admin routes are disabled")
	}
	rest.NewApi(router, a.services, rest.Options{
		Username:       cfg.Auth.Username,
		Password:       cfg.Auth.Password,
		CommentLimiter: middleware.NewRateLimiter(cfg.Comments.RatePerMinute, cfg.Comments.Burst),
		Health:         a.health,
		Metrics:        metrics.Handler(a.registry),
	})

	if cfg.Posts.Source == config.SourceGithub {
		webhook.NewWebhookHandler(cfg.Github.WebhookSecret, cfg.Github.Ref, runner).RegisterRoutes(router)
	}
	return router
}
