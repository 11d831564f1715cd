package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	mcpadapter "github.com/hydroflow/hydroflow/internal/adapters/mcp"
	"github.com/hydroflow/hydroflow/internal/bootstrap"
	"github.com/hydroflow/hydroflow/internal/config"
	"github.com/hydroflow/hydroflow/internal/observability/logging"
)

const service = "mcp"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Stdout carries the MCP protocol, so logs go to stderr here.
	logger := logging.NewStderrJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv, err := mcpadapter.NewServer(app.QueryUC, app.Quotes)
	if err != nil {
		logger.Error("init mcp server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("mcp server listening on stdio")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("mcp server stopped")
}
