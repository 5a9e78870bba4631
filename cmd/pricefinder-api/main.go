package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pricefinder/internal/config"
	"pricefinder/internal/extract"
	"pricefinder/internal/fetch"
	server "pricefinder/internal/http"
	"pricefinder/internal/llm"
	"pricefinder/internal/resolve"
	"pricefinder/internal/scrape"
	"pricefinder/internal/search"
	"pricefinder/internal/services"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Optional .env for API keys; missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load(*configPath)

	logger := newLogger(cfg.Logging)

	// The LLM client is built once here and shared by every request.
	llmClient, provider, modelName, err := llm.NewClientFromConfig(cfg)
	if err != nil {
		log.Fatalf("llm client setup failed: %v", err)
	}
	logger.Info("llm client ready", "provider", string(provider), "model", modelName)

	fetcher := fetch.NewFetcherFromConfig(cfg)
	searcher := search.NewGoogleSearcher(cfg.Search.BaseURL, fetcher)

	policy := resolve.DefaultPolicy()
	if cfg.Search.PacingMs > 0 {
		policy.Pacing = time.Duration(cfg.Search.PacingMs) * time.Millisecond
	}
	if cfg.Search.MaxRetries > 0 {
		policy.MaxRetries = cfg.Search.MaxRetries
	}

	lookup := services.NewLookupService(
		extract.NewExtractor(llmClient, logger),
		resolve.NewResolver(searcher, policy, logger),
		scrape.NewPriceScraper(fetcher, logger),
		logger,
	)

	s := server.NewServer(cfg, lookup, logger)
	if err := s.Listen(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// newLogger builds the process logger with level and format taken
// from config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
