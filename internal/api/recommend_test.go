package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrysage/backend/internal/service"
	"github.com/pantrysage/backend/internal/types"
)

// stubRecommender returns a canned ranked list or error.
type stubRecommender struct {
	recipes     []types.RankedRecipe
	err         error
	lastProfile types.UserProfile
}

func (s *stubRecommender) Recommend(_ context.Context, profile types.UserProfile, _ string) ([]types.RankedRecipe, error) {
	s.lastProfile = profile
	if s.err != nil {
		return nil, s.err
	}
	return s.recipes, nil
}

func newTestRouter(recommender service.Recommender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewRecommendHandler(recommender, zerolog.Nop()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postRecommendation(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validRequest() RecommendRequest {
	return RecommendRequest{
		Profile: types.UserProfile{
			Diet:              types.DietVegetarian,
			MaxMinutes:        30,
			Servings:          2,
			CuisinePreference: types.CuisineGlobal,
		},
		Inventory: "paneer, onion, tomato",
	}
}

func TestRecommendHandler(t *testing.T) {
	t.Run("returns ranked recipes", func(t *testing.T) {
		recommender := &stubRecommender{recipes: []types.RankedRecipe{
			{
				Recipe:     types.Recipe{ID: "r1", Title: "Paneer Curry"},
				Annotation: types.Annotation{Score: 90, Reason: "good match"},
			},
		}}
		router := newTestRouter(recommender)

		w := postRecommendation(t, router, validRequest())
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Recipes []types.RankedRecipe `json:"recipes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, "Paneer Curry", resp.Recipes[0].Recipe.Title)
		assert.Equal(t, float64(90), resp.Recipes[0].Annotation.Score)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := newTestRouter(&stubRecommender{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects invalid profile", func(t *testing.T) {
		router := newTestRouter(&stubRecommender{})

		req := validRequest()
		req.Profile.Diet = "carnivore"
		w := postRecommendation(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown diet")
	})

	t.Run("rejects missing inventory", func(t *testing.T) {
		router := newTestRouter(&stubRecommender{})

		req := validRequest()
		req.Inventory = ""
		w := postRecommendation(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps retrieval failure to 503", func(t *testing.T) {
		recommender := &stubRecommender{err: service.ErrRetrievalUnavailable}
		router := newTestRouter(recommender)

		w := postRecommendation(t, router, validRequest())
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "unable to retrieve candidates")
	})
}
