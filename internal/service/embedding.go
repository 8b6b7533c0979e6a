package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
)

// EmbeddingClient calls an OpenAI-compatible embeddings API. Like the chat
// client it retries transient failures; exhaustion propagates to the caller
// since retrieval has no deterministic fallback.
type EmbeddingClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	retry  RetryPolicy
	logger zerolog.Logger
}

// NewEmbeddingClient creates a new EmbeddingClient instance.
func NewEmbeddingClient(apiKey, apiURL, model string, logger zerolog.Logger) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
		retry:  DefaultRetryPolicy(),
		logger: logger.With().Str("component", "embedding").Logger(),
	}
}

// Embed returns the dense vector for the given text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	var vec pgvector.Vector
	err := c.retry.Execute(ctx, func() error {
		var err error
		vec, err = c.embed(ctx, text)
		return err
	})
	return vec, err
}

func (c *EmbeddingClient) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	reqBody := struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{
		Model: c.model,
		Input: []string{text},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return pgvector.Vector{}, markTransient(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pgvector.Vector{}, markTransient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("embedding API request failed with status %d: %s", resp.StatusCode, string(body))
		if retryableStatus(resp.StatusCode) {
			return pgvector.Vector{}, markTransient(err)
		}
		return pgvector.Vector{}, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no embedding in API response")
	}

	return pgvector.NewVector(result.Data[0].Embedding), nil
}
