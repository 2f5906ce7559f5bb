package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/api"
	"github.com/newsguardai/newsguard/internal/config"
	"github.com/newsguardai/newsguard/internal/engine"
	"github.com/newsguardai/newsguard/internal/history"
	"github.com/newsguardai/newsguard/internal/inference"
	"github.com/newsguardai/newsguard/internal/queue"
	"github.com/newsguardai/newsguard/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	generateConfig := flag.Bool("generate-config", false, "write a sample configuration file and exit")
	flag.Parse()

	if *generateConfig {
		if err := config.GenerateSample(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write sample config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging)

	kv, err := storage.NewSQLiteKV(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer kv.Close()

	client, err := newInferenceClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure inference provider")
	}
	if client == nil {
		log.Warn().Msg("No inference provider configured - text runs on the heuristic scorer, file jobs will fail")
	}

	hist := history.NewLog(kv, cfg.History.Capacity)
	q := queue.New(nil)

	eng := engine.New(client, hist, q, engine.Options{
		TextTimeout: cfg.Inference.TextTimeout(),
		FileTimeout: cfg.Inference.FileTimeout(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(cfg, eng, kv),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Inference.TextTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newInferenceClient(cfg *config.Config) (inference.Client, error) {
	switch cfg.Inference.Provider {
	case "http":
		return inference.NewHTTPClient(cfg.Inference.BaseURL), nil
	case "openai":
		return inference.NewOpenAIClient(cfg.Inference.APIKey, cfg.Inference.Model)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Inference.Provider)
	}
}
