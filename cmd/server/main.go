package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxflow/voxflow-core/core/callers"
	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/internal/config"
	"github.com/voxflow/voxflow-core/internal/metrics"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "voxflow-core"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("service starting",
		slog.String("service", serviceName),
		slog.String("config_path", *configPath),
	)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.HTTP.Port),
		slog.String("public_host", cfg.HTTP.PublicHost),
		slog.String("listen_model", cfg.Speech.ListenModel),
		slog.String("voice", cfg.Speech.Voice),
		slog.String("backend_model", cfg.Backend.Model),
		slog.Int("history_limit", cfg.Orchestration.HistoryLimit),
	)

	directory, err := callers.LoadDirectory(cfg.Callers.DirectoryPath)
	if err != nil {
		logger.Error("loading caller directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("caller directory loaded", slog.Int("entries", directory.Count()))

	m := metrics.NewMetrics()

	var tools []llms.Tool
	if cfg.Callers.PantryPath != "" {
		tool, err := newKitchenInventoryTool(cfg.Callers.PantryPath, m)
		if err != nil {
			logger.Error("loading pantry tool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		tools = append(tools, tool)
	}

	srv, err := newServer(cfg, logger, m, directory, tools)
	if err != nil {
		logger.Error("building server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("service stopped")
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
