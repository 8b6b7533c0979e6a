package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/config"
	"github.com/pantrysage/backend/internal/corpus"
	"github.com/pantrysage/backend/internal/retrieval"
	"github.com/pantrysage/backend/internal/server"
	"github.com/pantrysage/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !config.IsProduction() {
		logger = logger.Level(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	store, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load corpus")
	}
	logger.Info().Int("recipes", store.Len()).Msg("corpus loaded")

	index, err := retrieval.LoadIndex(cfg.IndexPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load vector index (run cmd/indexer first)")
	}
	logger.Info().Int("vectors", index.Len()).Int("dim", index.Dim).Msg("index loaded")

	cache, err := newPromptCache(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create prompt cache")
	}

	embedder := service.NewEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingAPIURL, cfg.EmbeddingModel, logger)
	chat := service.NewLLMClient(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMModel, cache, logger)
	engine := retrieval.NewEngine(embedder, index, logger)
	adapter := service.NewAdapter(chat, logger)
	recommender := service.NewRecommendService(engine, store, adapter, logger,
		service.WithRetrievalK(cfg.RetrievalK),
		service.WithConcurrency(cfg.AdaptConcurrency),
	)

	srv := server.New(cfg, recommender, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}

func newPromptCache(cfg *config.Config, logger zerolog.Logger) (service.PromptCache, error) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		return service.NewRedisCache(client, ttl, logger), nil
	case "memory":
		return service.NewLRUCache(cfg.CacheCapacity)
	default:
		return service.NopCache{}, nil
	}
}
