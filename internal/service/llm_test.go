package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func newTestLLMClient(url string, cache PromptCache) *LLMClient {
	client := NewLLMClient("test-key", url, "test-model", cache, zerolog.Nop())
	client.retry = fastPolicy()
	return client
}

func TestLLMClientChat(t *testing.T) {
	t.Run("returns message content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "json_object", req.ResponseFormat["type"])

			w.Write([]byte(chatCompletion(`{"score": 80}`)))
		}))
		defer srv.Close()

		client := newTestLLMClient(srv.URL, NopCache{})
		got, err := client.Chat(context.Background(), "sys", "user")
		require.NoError(t, err)
		assert.Equal(t, `{"score": 80}`, got)
	})

	t.Run("memoizes identical prompt pairs", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(chatCompletion("cached")))
		}))
		defer srv.Close()

		cache, err := NewLRUCache(10)
		require.NoError(t, err)
		client := newTestLLMClient(srv.URL, cache)

		for i := 0; i < 3; i++ {
			got, err := client.Chat(context.Background(), "sys", "user")
			require.NoError(t, err)
			assert.Equal(t, "cached", got)
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(chatCompletion("recovered")))
		}))
		defer srv.Close()

		client := newTestLLMClient(srv.URL, NopCache{})
		got, err := client.Chat(context.Background(), "sys", "user")
		require.NoError(t, err)
		assert.Equal(t, "recovered", got)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client := newTestLLMClient(srv.URL, NopCache{})
		_, err := client.Chat(context.Background(), "sys", "user")
		assert.Error(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("empty choices errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		client := newTestLLMClient(srv.URL, NopCache{})
		_, err := client.Chat(context.Background(), "sys", "user")
		assert.ErrorContains(t, err, "no response")
	})
}
