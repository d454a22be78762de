package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mapleward/sbard/internal/api"
	"github.com/mapleward/sbard/internal/config"
	"github.com/mapleward/sbard/internal/events"
	"github.com/mapleward/sbard/internal/gemini"
	"github.com/mapleward/sbard/internal/report"
	"github.com/mapleward/sbard/internal/store"
	"github.com/mapleward/sbard/internal/transcript"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("sbard starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Gemini client
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	if cfg.AuthJWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}
	llm := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, time.Duration(cfg.AITimeoutSeconds)*time.Second)
	slog.Info("gemini client ready", "model", cfg.GeminiModel, "timeout_s", cfg.AITimeoutSeconds)

	// NATS publisher (optional — sbard works without a broker, just no audit events)
	var publisher api.Publisher
	if cfg.NatsURL != "" {
		pub, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without audit events")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.AuthJWTSecret, api.Deps{
		Reports:     report.NewGenerator(llm, slog.Default()),
		Transcripts: transcript.NewExtractor(llm, slog.Default()),
		Drafts:      db,
		Usage:       db,
		Events:      publisher,
		Logger:      slog.Default(),
	})

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("sbard ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	cancel()
	slog.Info("sbard stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
