// Package config holds the process-wide configuration, loaded once at
// startup from environment variables and read-only afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerHost     string
	ServerPort     string
	AllowedOrigins []string

	// Language-model provider
	LLMAPIKey string
	LLMAPIURL string
	LLMModel  string

	// Embedding provider
	EmbeddingAPIKey string
	EmbeddingAPIURL string
	EmbeddingModel  string

	// Prompt cache: "redis", "memory" or "none"
	CacheBackend  string
	CacheCapacity int
	CacheTTLHours int

	// Redis configuration (cache backend "redis" only)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Pipeline artifacts and tuning
	CorpusPath       string
	IndexPath        string
	RetrievalK       int
	AdaptConcurrency int
}

// LoadConfig creates a new Config instance from environment variables,
// applying defaults and validating the result.
func LoadConfig() (*Config, error) {
	llmKey, err := readAPIKey("LLM_API_KEY")
	if err != nil {
		return nil, err
	}
	embKey, err := readAPIKey("EMBEDDING_API_KEY")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),

		LLMAPIKey: llmKey,
		LLMAPIURL: getEnv("LLM_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		LLMModel:  getEnv("LLM_MODEL", "deepseek-chat"),

		EmbeddingAPIKey: embKey,
		EmbeddingAPIURL: getEnv("EMBEDDING_API_URL", "https://api.openai.com/v1/embeddings"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", 100),
		CacheTTLHours: getEnvInt("CACHE_TTL_HOURS", 24),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CorpusPath:       getEnv("CORPUS_PATH", "data/recipes.json"),
		IndexPath:        getEnv("INDEX_PATH", "data/recipes.index.json"),
		RetrievalK:       getEnvInt("RETRIEVAL_K", 5),
		AdaptConcurrency: getEnvInt("ADAPT_CONCURRENCY", 4),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string
	if c.LLMAPIKey == "" {
		errs = append(errs, "LLM_API_KEY or LLM_API_KEY_FILE must be set")
	}
	if c.EmbeddingAPIKey == "" {
		errs = append(errs, "EMBEDDING_API_KEY or EMBEDDING_API_KEY_FILE must be set")
	}
	switch c.CacheBackend {
	case "redis", "memory", "none":
	default:
		errs = append(errs, fmt.Sprintf("unknown cache backend %q", c.CacheBackend))
	}
	if c.CacheCapacity <= 0 {
		errs = append(errs, "CACHE_CAPACITY must be positive")
	}
	if c.RetrievalK <= 0 {
		errs = append(errs, "RETRIEVAL_K must be positive")
	}
	if c.AdaptConcurrency <= 0 {
		errs = append(errs, "ADAPT_CONCURRENCY must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// readAPIKey reads a provider key from the environment, falling back to a
// key file (the <NAME>_FILE convention used with Docker secrets).
func readAPIKey(name string) (string, error) {
	if key := os.Getenv(name); key != "" {
		return key, nil
	}
	keyFile := os.Getenv(name + "_FILE")
	if keyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name+"_FILE", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
