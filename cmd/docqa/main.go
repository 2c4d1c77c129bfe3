package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	docs := flag.String("docs", "", "Comma-separated documents or directories to index at start")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load(*envFile)

	if *docs != "" {
		os.Setenv("DOCS", *docs)
	}

	cfg := config.Config{}
	if err := config.Init(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
		TimeFormat: "15:04:05",
	})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, log)

	log.Info("Starting", "embedder", cfg.Embedder, "model", cfg.LlmMain.Model, "documents", len(cfg.Docs))

	a, err := app.New(&cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer a.Close()

	if err := a.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("app stopped with error: %w", err)
	}
	return nil
}
