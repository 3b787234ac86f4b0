package bootstrap

import (
	"context"
	"fmt"
	"log"

	"customer-service-be/internal/config"
	"customer-service-be/pkg/embedding"
	"customer-service-be/pkg/llm"
	"customer-service-be/pkg/llm/factory"

	"github.com/redis/go-redis/v9"
)

func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	settings := factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
	}
	switch cfg.Ai.LLMProvider {
	case "openai":
		settings.APIKey = cfg.Keys.OpenAI
	case "huggingface":
		settings.APIKey = cfg.Keys.HuggingFace
	case "ollama":
		if settings.BaseURL == "" {
			settings.BaseURL = cfg.Ai.OllamaBaseURL
		}
	}

	p, err := factory.NewLLMProvider(settings)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	return p, nil
}

func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	settings := embedding.Settings{
		Provider:   cfg.Ai.EmbeddingProvider,
		Model:      cfg.Ai.EmbeddingModel,
		BaseURL:    cfg.Ai.EmbeddingBaseURL,
		Dimensions: cfg.Ai.EmbeddingDimensions,
	}
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		settings.APIKey = cfg.Keys.GoogleGemini
	case "jina":
		settings.APIKey = cfg.Keys.Jina
	case "ollama":
		if settings.BaseURL == "" {
			settings.BaseURL = cfg.Ai.OllamaBaseURL
		}
	default:
		settings.APIKey = cfg.Keys.OpenAI
	}

	p, err := embedding.NewProvider(settings)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)
	return p, nil
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
