package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reclamala-backend/internal/bootstrap"
	"reclamala-backend/internal/shared/config"
	"reclamala-backend/internal/shared/server"
	"reclamala-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	telemetry.SetLevel(cfg.LogLevel)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err.Error()})
		removeTempKey(cfg)
		os.Exit(1)
	}

	srv := server.NewServer(app.Router, server.Addr(cfg.Port), cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout)
	if cfg.VisionKeyIsTemp {
		srv.OnShutdown("vision-key", func(ctx context.Context) error {
			return os.Remove(cfg.VisionKeyPath)
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		telemetry.Error("server.error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

func removeTempKey(cfg config.Config) {
	if cfg.VisionKeyIsTemp {
		_ = os.Remove(cfg.VisionKeyPath)
	}
}
