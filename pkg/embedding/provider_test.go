package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNormalizeVector(t *testing.T) {
	out := normalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)

	zero := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small"}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProvider("test-key", server.URL, "", 1536)
	require.NoError(t, err)

	res, err := p.Generate(context.Background(), "gaming laptop", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Embedding.Values)
	assert.Equal(t, "text-embedding-3-small", got["model"])
	assert.EqualValues(t, 1536, got["dimensions"])
}

func TestOllamaProvider_GenerateNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":[3.0,4.0]}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	res, err := p.Generate(context.Background(), "laptop", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(res.Embedding.Values), 1e-6)
}

func TestGeminiProvider_Generate(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[1.0,1.0]}}`))
	}))
	defer server.Close()

	p := NewGeminiProvider("key", "", 1536)
	p.Endpoint = server.URL + "/%s"

	res, err := p.Generate(context.Background(), "phone", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(res.Embedding.Values), 1e-6)
	assert.Equal(t, "RETRIEVAL_QUERY", got.TaskType)
	assert.Equal(t, 1536, got.OutputDimensionality)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(Settings{Provider: "nope"})
	assert.Error(t, err)

	p, err := NewProvider(Settings{Provider: "ollama"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)

	p, err = NewProvider(Settings{Provider: "jina", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &JinaProvider{}, p)
}
