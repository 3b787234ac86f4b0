package embedding

import (
	"context"
	"fmt"
	"math"
)

// Task types understood by providers that distinguish queries from documents.
// Providers without the notion ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

type Settings struct {
	Provider   string // "openai", "ollama", "gemini", "jina"
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

func NewProvider(s Settings) (EmbeddingProvider, error) {
	switch s.Provider {
	case "", "openai":
		p, err := NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model, s.Dimensions)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		return NewOllamaProvider(s.BaseURL, s.Model), nil
	case "gemini":
		return NewGeminiProvider(s.APIKey, s.Model, s.Dimensions), nil
	case "jina":
		return NewJinaProvider(s.APIKey, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", s.Provider)
	}
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// Cosine distance in pgvector assumes comparable magnitudes.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
