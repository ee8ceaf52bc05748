package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"binwatch/internal/app"
	"binwatch/internal/config"
	"binwatch/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, l)
	if err != nil {
		l.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		l.Error("Server stopped: %v", err)
		application.Close()
		l.Sync()
		os.Exit(1)
	}
}
