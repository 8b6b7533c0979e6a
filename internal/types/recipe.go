package types

import (
	"fmt"
	"strings"
)

// Recipe represents a single corpus entry. Recipes are immutable once
// loaded; the pipeline never writes back to the corpus.
type Recipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Tags        []string `json:"tags"`
	Tools       []string `json:"tools"`
	Minutes     int      `json:"minutes"`
	Servings    int      `json:"servings"`
	Steps       []string `json:"steps"`
}

// Validate checks that a corpus entry is well formed. Malformed entries are
// rejected at load time rather than surfacing as missing-key errors later.
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("recipe is missing an id")
	}
	if r.Title == "" {
		return fmt.Errorf("recipe %s is missing a title", r.ID)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %s has no ingredients", r.ID)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("recipe %s has no steps", r.ID)
	}
	if r.Minutes <= 0 {
		return fmt.Errorf("recipe %s has non-positive cook time %d", r.ID, r.Minutes)
	}
	if r.Servings <= 0 {
		return fmt.Errorf("recipe %s has non-positive servings %d", r.ID, r.Servings)
	}
	return nil
}

// EmbeddingText returns the canonical serialization used to embed a recipe.
// The index must be rebuilt whenever this format changes.
func (r *Recipe) EmbeddingText() string {
	return fmt.Sprintf("%s | %s | %s | %s",
		r.Title,
		strings.Join(r.Ingredients, ", "),
		strings.Join(r.Tags, ", "),
		strings.Join(r.Steps, ". "),
	)
}

// HasTag reports whether the recipe carries the given tag, case-insensitively.
func (r *Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Annotation represents the adaptation result for one recipe: a suitability
// score, proposed ingredient substitutions, steps rewritten for the user's
// kitchen and a short explanation.
type Annotation struct {
	Score                  float64           `json:"score"`
	SubstitutedIngredients map[string]string `json:"substituted_ingredients"`
	AdaptedSteps           []string          `json:"adapted_steps"`
	Reason                 string            `json:"reason"`
}

// RankedRecipe pairs a recipe with its annotation; it is the unit the
// pipeline returns to the caller.
type RankedRecipe struct {
	Recipe     Recipe     `json:"recipe"`
	Annotation Annotation `json:"annotation"`
}
