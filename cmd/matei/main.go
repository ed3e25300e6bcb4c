package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/arihantchoudhary/sasha-pilots/internal/app"
	"github.com/arihantchoudhary/sasha-pilots/internal/config"
)

func main() {
	// Optional .env for local development; the environment wins in production.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	cfg := config.Load()
	cleanup := config.SetupLogging(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = cleanup() }()

	app.Run(cfg, app.Matei())
}
