// Command indexer performs the offline index build: it embeds every corpus
// recipe once, L2-normalizes the vectors and persists the index with its id
// manifest. Rerun it whenever the corpus document changes.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/config"
	"github.com/pantrysage/backend/internal/corpus"
	"github.com/pantrysage/backend/internal/retrieval"
	"github.com/pantrysage/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	store, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load corpus")
	}
	logger.Info().Int("recipes", store.Len()).Msg("corpus loaded")

	embedder := service.NewEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingAPIURL, cfg.EmbeddingModel, logger)

	index, err := retrieval.BuildIndex(context.Background(), store, embedder, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("index build failed")
	}

	if err := index.Save(cfg.IndexPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to persist index")
	}
	logger.Info().Str("path", cfg.IndexPath).Msg("index written")
}
