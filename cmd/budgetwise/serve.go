package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/config"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/handler"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/cache"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/client"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/render"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the budget HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("webhook_subscribers", len(cfg.WebhookURLs)),
		zap.Duration("notify_timeout", cfg.NotifyTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.TracingEndpoint(), "budgetwise-bfa")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Session store ---
	sessions := cache.NewWithEviction[*domain.BudgetSession](cfg.SessionTTL, func(id string, _ *domain.BudgetSession) {
		metrics.SessionEnded()
		logger.Debug("budget session evicted", zap.String("session_id", id))
	})
	defer sessions.Close()

	// --- Notifier ---
	var (
		webhooks *client.WebhookNotifier
		notifier port.SnapshotNotifier
	)
	if len(cfg.WebhookURLs) > 0 {
		webhooks = client.NewWebhookNotifier(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.WebhookURLs,
			resilience.NewCircuitBreaker("budget-webhooks", logger),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			logger,
		)
		notifier = webhooks
		logger.Info("snapshot webhooks enabled", zap.Strings("urls", cfg.WebhookURLs))
	} else {
		logger.Info("no snapshot webhooks configured")
	}

	// --- Services ---
	budgetSvc := service.NewBudgetService(
		sessions,
		service.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL),
		notifier,
		cfg.NotifyTimeout,
		metrics,
		logger,
	)
	renderer := render.NewPieRenderer(cfg.ChartWidth, cfg.ChartHeight, cfg.MaxConcurrency)

	// --- Router ---
	router := handler.NewRouter(budgetSvc, renderer, webhooks, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced shutdown: %w", err)
		}
		if err := budgetSvc.Wait(shutdownCtx); err != nil {
			logger.Warn("pending notifications dropped", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
