package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pantrysage/backend/internal/corpus"
	"github.com/pantrysage/backend/internal/rules"
	"github.com/pantrysage/backend/internal/types"
)

const (
	defaultRetrievalK  = 5
	defaultConcurrency = 4
)

// RecommendService composes the recommendation pipeline: normalize the
// inventory, retrieve semantic candidates, apply the rule filters, adapt
// each survivor through the language model and return a ranked,
// title-deduplicated list.
type RecommendService struct {
	retriever   Retriever
	store       *corpus.Store
	adapter     RecipeAdapter
	k           int
	concurrency int
	logger      zerolog.Logger
}

// RecommendOption configures a RecommendService.
type RecommendOption func(*RecommendService)

// WithRetrievalK sets how many candidates retrieval returns.
func WithRetrievalK(k int) RecommendOption {
	return func(s *RecommendService) { s.k = k }
}

// WithConcurrency bounds how many adaptation calls run in parallel.
func WithConcurrency(n int) RecommendOption {
	return func(s *RecommendService) { s.concurrency = n }
}

// NewRecommendService creates a new RecommendService instance.
func NewRecommendService(retriever Retriever, store *corpus.Store, adapter RecipeAdapter, logger zerolog.Logger, opts ...RecommendOption) *RecommendService {
	s := &RecommendService{
		retriever:   retriever,
		store:       store,
		adapter:     adapter,
		k:           defaultRetrievalK,
		concurrency: defaultConcurrency,
		logger:      logger.With().Str("component", "recommend").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend runs the full pipeline for one request. Retrieval failure is the
// only error it returns; every downstream failure degrades to a fallback
// annotation on the affected candidate.
func (s *RecommendService) Recommend(ctx context.Context, profile types.UserProfile, inventoryText string) ([]types.RankedRecipe, error) {
	profile.Normalize()
	inventory := types.ParseInventory(inventoryText)

	matches, err := s.retriever.Search(ctx, inventory.Query(), s.k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	// Resolve ids against the loaded corpus; ids from a stale index are
	// silently dropped.
	candidates := make([]types.Recipe, 0, len(matches))
	for _, m := range matches {
		recipe, ok := s.store.Get(m.ID)
		if !ok {
			s.logger.Debug().Str("recipe_id", m.ID).Msg("dropping stale index id")
			continue
		}
		candidates = append(candidates, recipe)
	}

	filtered := make([]types.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if s.passesFilters(profile, r) {
			filtered = append(filtered, r)
		}
	}

	// Empty-filter fallback: the system always returns something rather
	// than nothing, trading precision for availability.
	if len(filtered) == 0 {
		s.logger.Info().Int("candidates", len(candidates)).Msg("filters eliminated every candidate, using unfiltered set")
		filtered = candidates
	}

	ranked := make([]types.RankedRecipe, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, recipe := range filtered {
		i, recipe := i, recipe
		g.Go(func() error {
			subs := rules.ProposeSubstitutions(recipe.Ingredients, inventory, profile.Diet, profile.Allergies)
			missing := rules.MissingIngredients(recipe.Ingredients, inventory)
			ranked[i] = types.RankedRecipe{
				Recipe:     recipe,
				Annotation: s.adapter.Adapt(gctx, profile, inventory, recipe, subs, missing),
			}
			return nil
		})
	}
	// Adaptation never fails; each candidate degrades independently.
	_ = g.Wait()

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Annotation.Score > ranked[b].Annotation.Score
	})

	return dedupeByTitle(ranked), nil
}

// passesFilters applies the deterministic critique step: cook time, diet,
// allergens, cuisine preference and disliked ingredients.
func (s *RecommendService) passesFilters(profile types.UserProfile, r types.Recipe) bool {
	if r.Minutes > profile.MaxMinutes {
		return false
	}
	if rules.ViolatesDiet(r.Ingredients, profile.Diet) {
		return false
	}
	if rules.ViolatesAllergens(r.Ingredients, profile.Allergies) {
		return false
	}
	if profile.CuisinePreference == types.CuisineIndian && !r.HasTag("indian") {
		return false
	}
	for _, dislike := range profile.Dislikes {
		for _, ing := range r.Ingredients {
			if strings.ToLower(ing) == dislike {
				return false
			}
		}
	}
	return true
}

// dedupeByTitle keeps the first (highest ranked) entry per title.
func dedupeByTitle(ranked []types.RankedRecipe) []types.RankedRecipe {
	seen := make(map[string]struct{}, len(ranked))
	out := make([]types.RankedRecipe, 0, len(ranked))
	for _, rr := range ranked {
		if _, dup := seen[rr.Recipe.Title]; dup {
			continue
		}
		seen[rr.Recipe.Title] = struct{}{}
		out = append(out, rr)
	}
	return out
}
