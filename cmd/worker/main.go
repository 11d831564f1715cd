package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hydroflow/hydroflow/internal/bootstrap"
	"github.com/hydroflow/hydroflow/internal/config"
	"github.com/hydroflow/hydroflow/internal/observability/logging"
	"github.com/hydroflow/hydroflow/internal/observability/metrics"
)

const (
	service        = "worker"
	processTimeout = 5 * time.Minute
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metricsHandler(workerMetrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribing", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReportUploaded(ctx, func(msgCtx context.Context, reportID string) error {
		processCtx, cancel := context.WithTimeout(msgCtx, processTimeout)
		defer cancel()

		workerMetrics.StartReport()
		started := time.Now()
		processErr := app.Process.ProcessByID(processCtx, reportID)
		workerMetrics.FinishReport(service, time.Since(started), processErr)

		if processErr != nil {
			logger.Error("report processing failed", "report_id", reportID, "error", processErr)
			return processErr
		}
		logger.Info("report processed", "report_id", reportID, "duration", time.Since(started).String())
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("subscription failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
