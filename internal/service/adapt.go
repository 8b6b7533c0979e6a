package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/internal/types"
)

// adaptSystemPrompt is the fixed instruction sent with every adaptation
// call. The response keys are load-bearing: parseAnnotation requires all
// four.
const adaptSystemPrompt = `You are a helpful kitchen assistant.
Given (inventory, profile, recipe), score suitability 0-100, propose substitutions,
adapt steps for available tools/time/servings, and explain briefly, considering dislikes.
Return STRICT JSON with keys: score, substituted_ingredients (dict), adapted_steps (list), reason (string).`

// Adapter scores and rewrites one recipe at a time against the user's
// profile via the language model. It never returns an error: any provider or
// schema failure degrades to a deterministic fallback annotation so every
// candidate always gets exactly one annotation.
type Adapter struct {
	chat   ChatClient
	logger zerolog.Logger
}

// NewAdapter creates a new Adapter instance.
func NewAdapter(chat ChatClient, logger zerolog.Logger) *Adapter {
	return &Adapter{
		chat:   chat,
		logger: logger.With().Str("component", "adapter").Logger(),
	}
}

// Adapt produces the annotation for one (recipe, profile) pair.
func (a *Adapter) Adapt(ctx context.Context, profile types.UserProfile, inventory types.Inventory, recipe types.Recipe, ruleSubs map[string]string, missing []string) types.Annotation {
	user := buildUserPrompt(profile, inventory, recipe, ruleSubs, missing)

	text, err := a.chat.Chat(ctx, adaptSystemPrompt, user)
	if err != nil {
		a.logger.Warn().Err(err).Str("recipe_id", recipe.ID).Msg("provider call failed, using fallback annotation")
		return fallbackAnnotation(recipe, ruleSubs, fmt.Sprintf("provider failure: %v", err))
	}

	annotation, err := parseAnnotation(text)
	if err != nil {
		a.logger.Warn().Err(err).Str("recipe_id", recipe.ID).Msg("invalid provider response, using fallback annotation")
		return fallbackAnnotation(recipe, ruleSubs, fmt.Sprintf("invalid response: %v", err))
	}

	return annotation
}

// fallbackAnnotation is the deterministic minimal result used whenever the
// language model cannot produce a valid structured response: neutral score,
// the rule engine's substitutions unchanged, and the original steps.
func fallbackAnnotation(recipe types.Recipe, ruleSubs map[string]string, cause string) types.Annotation {
	return types.Annotation{
		Score:                  50,
		SubstitutedIngredients: ruleSubs,
		AdaptedSteps:           recipe.Steps,
		Reason:                 "Fallback: " + cause,
	}
}

// parseAnnotation strictly parses the model output: it must be a JSON object
// carrying exactly the four expected keys.
func parseAnnotation(text string) (types.Annotation, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return types.Annotation{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, key := range []string{"score", "substituted_ingredients", "adapted_steps", "reason"} {
		if _, ok := raw[key]; !ok {
			return types.Annotation{}, fmt.Errorf("response is missing key %q", key)
		}
	}

	var annotation types.Annotation
	if err := json.Unmarshal([]byte(text), &annotation); err != nil {
		return types.Annotation{}, fmt.Errorf("response does not match annotation schema: %w", err)
	}
	return annotation, nil
}

func buildUserPrompt(profile types.UserProfile, inventory types.Inventory, recipe types.Recipe, ruleSubs map[string]string, missing []string) string {
	var b strings.Builder

	b.WriteString("PROFILE:\n")
	fmt.Fprintf(&b, "- cuisine: %s\n", profile.CuisinePreference)
	fmt.Fprintf(&b, "- diet: %s\n", profile.Diet)
	fmt.Fprintf(&b, "- allergies: %s\n", joinAllergens(profile.Allergies))
	fmt.Fprintf(&b, "- dislikes: %s\n", strings.Join(profile.Dislikes, ", "))
	fmt.Fprintf(&b, "- tools: %s\n", strings.Join(profile.Tools, ", "))
	fmt.Fprintf(&b, "- max_minutes: %d\n", profile.MaxMinutes)
	fmt.Fprintf(&b, "- servings: %d\n", profile.Servings)

	fmt.Fprintf(&b, "\nINVENTORY: %s\n", strings.Join(inventory.Items(), ", "))

	b.WriteString("\nRECIPE:\n")
	fmt.Fprintf(&b, "- title: %s\n", recipe.Title)
	fmt.Fprintf(&b, "- ingredients: %s\n", strings.Join(recipe.Ingredients, ", "))
	fmt.Fprintf(&b, "- tools: %s\n", strings.Join(recipe.Tools, ", "))
	fmt.Fprintf(&b, "- minutes: %d\n", recipe.Minutes)
	fmt.Fprintf(&b, "- servings: %d\n", recipe.Servings)
	fmt.Fprintf(&b, "- steps: %s\n", strings.Join(recipe.Steps, " | "))

	fmt.Fprintf(&b, "\nSUGGESTED_SUBS_FROM_RULES: %s\n", formatSubs(ruleSubs))
	fmt.Fprintf(&b, "MISSING_INGREDIENTS: %s\n", strings.Join(missing, ", "))

	return b.String()
}

func joinAllergens(allergens []types.Allergen) string {
	parts := make([]string, len(allergens))
	for i, a := range allergens {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

// formatSubs renders the substitution map deterministically so identical
// requests produce identical prompts and hit the cache.
func formatSubs(subs map[string]string) string {
	if len(subs) == 0 {
		return "none"
	}
	data, err := json.Marshal(subs)
	if err != nil {
		return "none"
	}
	return string(data)
}
