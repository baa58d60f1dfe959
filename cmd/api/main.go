package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/papl-tools/papl-assistant/internal/adapters/http"
	"github.com/papl-tools/papl-assistant/internal/bootstrap"
	"github.com/papl-tools/papl-assistant/internal/config"
	"github.com/papl-tools/papl-assistant/internal/observability/logging"
	"github.com/papl-tools/papl-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.ReloadOnStart {
		report, err := app.ReloadUC.Reload(ctx)
		if err != nil {
			// Backfill publishing may fail with the snapshot already
			// serving; only an empty corpus is fatal.
			if report == nil {
				slog.Error("initial_reload_failed", "error", err)
				os.Exit(1)
			}
			slog.Warn("initial_reload_partial", "error", err,
				"documents", report.Documents, "pending", report.Pending)
		} else {
			slog.Info("corpus_loaded",
				"documents", report.Documents,
				"pending", report.Pending,
				"skipped", len(report.Skipped),
			)
		}
	}

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.SearchUC,
		app.ContextUC,
		app.AnswerUC,
		app.ReloadUC,
		app.Conversations,
		httpadapter.Options{
			Service:        "api",
			DefaultBudget:  cfg.ContextBudgetChars,
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			Metrics:        serverMetrics,
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", serverMetrics.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
