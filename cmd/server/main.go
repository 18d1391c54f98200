package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/competitorlens/backend/config"
	httpDelivery "github.com/competitorlens/backend/internal/delivery/http"
	"github.com/competitorlens/backend/internal/domain"
	"github.com/competitorlens/backend/internal/infrastructure/duckduckgo"
	"github.com/competitorlens/backend/internal/infrastructure/ollama"
	"github.com/competitorlens/backend/internal/infrastructure/tavily"
	"github.com/competitorlens/backend/internal/logging"
	"github.com/competitorlens/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting CompetitorLens backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	// Initialize infrastructure dependencies
	searchProvider := newSearchProvider(cfg, logger)

	llmClient := ollama.NewClient(cfg.LLM.BaseURL, ollama.ClientConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		NumCtx:      cfg.LLM.NumCtx,
		Timeout:     cfg.LLM.Timeout,
	}, logger.Named("ollama"))

	logger.Info("LLM configured",
		zap.String("base_url", cfg.LLM.BaseURL),
		zap.String("model", cfg.LLM.Model),
		zap.Float64("temperature", cfg.LLM.Temperature))

	// Initialize usecase layer
	researchService := usecase.NewResearchService(
		searchProvider,
		llmClient,
		usecase.ResearchServiceConfig{
			MaxResults:       cfg.Search.MaxResults,
			RepairMaxResults: cfg.Search.RepairMaxResults,
			MaxQueryLength:   cfg.Search.MaxQueryLength,
			Scoring:          scoringConfig(cfg.Scoring),
		},
		logger.Named("research"),
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(researchService, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger.Named("http"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

// newSearchProvider builds the configured web search backend
func newSearchProvider(cfg *config.Config, logger *zap.Logger) domain.SearchProvider {
	switch cfg.Search.Provider {
	case "tavily":
		logger.Info("search provider configured",
			zap.String("provider", "tavily"),
			zap.String("base_url", cfg.Search.BaseURL),
			zap.String("search_depth", cfg.Search.SearchDepth))
		return tavily.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL, tavilyConfig(cfg.Search), logger.Named("tavily"))
	default:
		logger.Info("search provider configured",
			zap.String("provider", "duckduckgo"),
			zap.String("base_url", cfg.Search.BaseURL))
		return duckduckgo.NewClient(cfg.Search.BaseURL, duckduckgo.ClientConfig{
			Timeout:   cfg.Search.Timeout,
			RateLimit: cfg.Search.RateLimit,
			Burst:     cfg.Search.Burst,
		}, logger.Named("duckduckgo"))
	}
}

func tavilyConfig(c config.SearchConfig) tavily.ClientConfig {
	return tavily.ClientConfig{
		Timeout:     c.Timeout,
		RateLimit:   c.RateLimit,
		Burst:       c.Burst,
		SearchDepth: c.SearchDepth,
	}
}

func scoringConfig(c config.ScoringConfig) usecase.ScoringConfig {
	return usecase.ScoringConfig{
		ArticlePenalty: c.ArticlePenalty,
		RootMaxSlashes: c.RootMaxSlashes,
		RootBonus:      c.RootBonus,
		DeepMinSlashes: c.DeepMinSlashes,
		DeepPenalty:    c.DeepPenalty,
		PreferredTLDs:  c.PreferredTLDs,
		TLDBonus:       c.TLDBonus,
		QueryPenalty:   c.QueryPenalty,
		HTTPSBonus:     c.HTTPSBonus,
	}
}

func init() {
	// Bootstrap errors before the zap logger exists go to stdout
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
