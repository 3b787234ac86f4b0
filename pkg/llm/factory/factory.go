package factory

import (
	"fmt"

	"customer-service-be/pkg/llm"
	"customer-service-be/pkg/llm/huggingface"
	"customer-service-be/pkg/llm/ollama"
	"customer-service-be/pkg/llm/openai"
)

// Settings carries what any of the supported backends may need.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "openai":
		p, err := openai.NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
