package retrieval

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/internal/corpus"
)

// Embedder turns text into a dense vector. Implementations wrap an external
// embedding provider and own their retry policy.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// Engine answers semantic queries against the corpus index.
type Engine struct {
	embedder Embedder
	index    *Index
	logger   zerolog.Logger
}

// NewEngine creates an Engine over a loaded index.
func NewEngine(embedder Embedder, index *Index, logger zerolog.Logger) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		logger:   logger.With().Str("component", "retrieval").Logger(),
	}
}

// Search embeds the query text and returns the top-k corpus matches by
// cosine similarity. An unreachable embedding provider propagates as an
// error; there is no non-semantic fallback here.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]Match, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := e.index.Search(vec.Slice(), k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	e.logger.Debug().Int("k", k).Int("matches", len(matches)).Msg("retrieval complete")
	return matches, nil
}

// BuildIndex embeds every corpus recipe once and returns the normalized
// index. This is the offline build; rerun it whenever the corpus changes.
func BuildIndex(ctx context.Context, store *corpus.Store, embedder Embedder, logger zerolog.Logger) (*Index, error) {
	index := NewIndex()
	for _, recipe := range store.All() {
		vec, err := embedder.Embed(ctx, recipe.EmbeddingText())
		if err != nil {
			return nil, fmt.Errorf("failed to embed recipe %s: %w", recipe.ID, err)
		}
		if err := index.Add(recipe.ID, vec.Slice()); err != nil {
			return nil, err
		}
		logger.Debug().Str("recipe_id", recipe.ID).Msg("indexed recipe")
	}
	logger.Info().Int("recipes", index.Len()).Int("dim", index.Dim).Msg("index build complete")
	return index, nil
}
