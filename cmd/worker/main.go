package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/papl-tools/papl-assistant/internal/bootstrap"
	"github.com/papl-tools/papl-assistant/internal/config"
	"github.com/papl-tools/papl-assistant/internal/observability/logging"
	"github.com/papl-tools/papl-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// The worker embeds against its own snapshot, so it needs the same
	// corpus the api serves.
	report, err := app.ReloadUC.Reload(ctx)
	if err != nil && report == nil {
		slog.Error("worker_reload_failed", "error", err)
		os.Exit(1)
	}
	if report != nil {
		slog.Info("worker_corpus_loaded", "documents", report.Documents, "pending", report.Pending)
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeEmbeddingRequested(ctx, func(handlerCtx context.Context, documentID string) error {
		embedCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		start := time.Now()
		workerMetrics.StartEmbed()
		embedErr := app.BackfillUC.EmbedDocument(embedCtx, documentID)
		workerMetrics.FinishEmbed("worker", time.Since(start), embedErr)
		return embedErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
