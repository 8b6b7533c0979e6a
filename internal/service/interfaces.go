package service

import (
	"context"

	"github.com/pantrysage/backend/internal/retrieval"
	"github.com/pantrysage/backend/internal/types"
)

// ChatClient defines the interface for the language-model provider.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Retriever defines the interface for semantic candidate retrieval.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]retrieval.Match, error)
}

// RecipeAdapter defines the interface for per-recipe scoring and adaptation.
// Implementations never fail; they degrade to a fallback annotation.
type RecipeAdapter interface {
	Adapt(ctx context.Context, profile types.UserProfile, inventory types.Inventory, recipe types.Recipe, ruleSubs map[string]string, missing []string) types.Annotation
}

// Recommender defines the interface for the full recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, profile types.UserProfile, inventoryText string) ([]types.RankedRecipe, error)
}
