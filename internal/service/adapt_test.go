package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrysage/backend/internal/types"
)

// stubChat returns a canned response or error and records the prompts.
type stubChat struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (s *stubChat) Chat(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testRecipe() types.Recipe {
	return types.Recipe{
		ID:          "r1",
		Title:       "Paneer Curry",
		Ingredients: []string{"paneer", "onion", "tomato", "cream"},
		Tags:        []string{"indian"},
		Tools:       []string{"pan"},
		Minutes:     25,
		Servings:    2,
		Steps:       []string{"fry onion", "add paneer", "simmer"},
	}
}

func testProfile() types.UserProfile {
	return types.UserProfile{
		Diet:              types.DietVegetarian,
		MaxMinutes:        30,
		Servings:          2,
		CuisinePreference: types.CuisineGlobal,
	}
}

func TestAdapterAdapt(t *testing.T) {
	recipe := testRecipe()
	profile := testProfile()
	inventory := types.ParseInventory("paneer, onion, tomato")
	ruleSubs := map[string]string{"cream": "cashew paste"}
	missing := []string{"cream"}

	t.Run("parses a valid response", func(t *testing.T) {
		chat := &stubChat{response: `{
			"score": 85,
			"substituted_ingredients": {"cream": "yogurt"},
			"adapted_steps": ["fry onion", "add paneer", "stir in yogurt"],
			"reason": "almost everything on hand"
		}`}
		adapter := NewAdapter(chat, zerolog.Nop())

		annotation := adapter.Adapt(context.Background(), profile, inventory, recipe, ruleSubs, missing)

		assert.Equal(t, float64(85), annotation.Score)
		assert.Equal(t, map[string]string{"cream": "yogurt"}, annotation.SubstitutedIngredients)
		assert.Len(t, annotation.AdaptedSteps, 3)
		assert.Equal(t, "almost everything on hand", annotation.Reason)
	})

	t.Run("prompt carries profile, inventory and rule output", func(t *testing.T) {
		chat := &stubChat{response: `{"score": 1, "substituted_ingredients": {}, "adapted_steps": [], "reason": ""}`}
		adapter := NewAdapter(chat, zerolog.Nop())

		adapter.Adapt(context.Background(), profile, inventory, recipe, ruleSubs, missing)

		assert.Contains(t, chat.lastSystem, "STRICT JSON")
		assert.Contains(t, chat.lastUser, "Paneer Curry")
		assert.Contains(t, chat.lastUser, "paneer, onion, tomato")
		assert.Contains(t, chat.lastUser, "cashew paste")
		assert.Contains(t, chat.lastUser, "MISSING_INGREDIENTS: cream")
	})

	t.Run("provider failure degrades to fallback", func(t *testing.T) {
		chat := &stubChat{err: errors.New("service unavailable")}
		adapter := NewAdapter(chat, zerolog.Nop())

		annotation := adapter.Adapt(context.Background(), profile, inventory, recipe, ruleSubs, missing)

		assert.Equal(t, float64(50), annotation.Score)
		assert.Equal(t, ruleSubs, annotation.SubstitutedIngredients)
		assert.Equal(t, recipe.Steps, annotation.AdaptedSteps)
		assert.True(t, strings.HasPrefix(annotation.Reason, "Fallback: provider failure"))
	})

	t.Run("non-JSON response degrades to fallback", func(t *testing.T) {
		chat := &stubChat{response: "sorry, I can't help with that"}
		adapter := NewAdapter(chat, zerolog.Nop())

		annotation := adapter.Adapt(context.Background(), profile, inventory, recipe, ruleSubs, missing)

		assert.Equal(t, float64(50), annotation.Score)
		assert.Equal(t, recipe.Steps, annotation.AdaptedSteps)
		assert.Contains(t, annotation.Reason, "invalid response")
	})

	t.Run("missing key degrades to fallback", func(t *testing.T) {
		chat := &stubChat{response: `{"score": 90, "substituted_ingredients": {}, "adapted_steps": []}`}
		adapter := NewAdapter(chat, zerolog.Nop())

		annotation := adapter.Adapt(context.Background(), profile, inventory, recipe, ruleSubs, missing)

		assert.Equal(t, float64(50), annotation.Score)
		assert.Contains(t, annotation.Reason, `missing key "reason"`)
	})
}

func TestParseAnnotation(t *testing.T) {
	t.Run("accepts integer and float scores", func(t *testing.T) {
		for _, raw := range []string{
			`{"score": 70, "substituted_ingredients": {}, "adapted_steps": ["x"], "reason": "ok"}`,
			`{"score": 70.5, "substituted_ingredients": {}, "adapted_steps": ["x"], "reason": "ok"}`,
		} {
			annotation, err := parseAnnotation(raw)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, annotation.Score, float64(70))
		}
	})

	t.Run("rejects arrays", func(t *testing.T) {
		_, err := parseAnnotation(`[1, 2, 3]`)
		assert.Error(t, err)
	})
}

func TestFormatSubs(t *testing.T) {
	t.Run("empty map renders none", func(t *testing.T) {
		assert.Equal(t, "none", formatSubs(nil))
	})

	t.Run("deterministic across identical maps", func(t *testing.T) {
		a := formatSubs(map[string]string{"milk": "almond milk", "butter": "oil"})
		b := formatSubs(map[string]string{"butter": "oil", "milk": "almond milk"})
		assert.Equal(t, a, b)
	})
}
