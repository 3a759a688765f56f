package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/server"
)

const (
	serviceName = "forreal-server"
	appVersion  = "dev"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	version := cfg.Version
	if version == "" {
		version = appVersion
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		Version: version,
	})

	if !cfg.APIFootball.Configured() {
		logging.Warn(logger, "API_FOOTBALL_KEY not set; fixture routes will fail")
	}
	if !cfg.Inference.Enabled() {
		logging.Info(logger, "inference disabled; predictions will be null")
	}
	logging.Info(logger, "configuration loaded", slog.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Run(ctx, stop)
}
