package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// chatMessage represents a message in the chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest represents a request to the chat completions API.
type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// LLMClient calls an OpenAI-compatible chat completions API, asking for JSON
// output. Calls are retried on transient failures and memoized through the
// injected prompt cache.
type LLMClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	retry  RetryPolicy
	cache  PromptCache
	logger zerolog.Logger
}

// NewLLMClient creates a new LLMClient instance.
func NewLLMClient(apiKey, apiURL, model string, cache PromptCache, logger zerolog.Logger) *LLMClient {
	return &LLMClient{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
		retry:  DefaultRetryPolicy(),
		cache:  cache,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// Chat sends the system/user prompt pair and returns the model's text
// response. The provider is asked for a JSON object but the caller must
// still validate the payload.
func (c *LLMClient) Chat(ctx context.Context, system, user string) (string, error) {
	key := CacheKey(system, user)
	if cached, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug().Msg("prompt cache hit")
		return cached, nil
	}

	var content string
	err := c.retry.Execute(ctx, func() error {
		var err error
		content, err = c.complete(ctx, system, user)
		return err
	})
	if err != nil {
		return "", err
	}

	c.cache.Set(ctx, key, content)
	return content, nil
}

func (c *LLMClient) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", markTransient(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", markTransient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("chat API request failed with status %d: %s", resp.StatusCode, string(body))
		if retryableStatus(resp.StatusCode) {
			return "", markTransient(err)
		}
		return "", err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from chat API")
	}

	return result.Choices[0].Message.Content, nil
}
