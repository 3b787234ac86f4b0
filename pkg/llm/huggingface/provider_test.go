package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"customer-service-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceProvider_Chat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p := NewHuggingFaceProvider("hf-key", server.URL+"/v1", "meta-llama/Llama-3.1-8B-Instruct")
	resp, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be nice"},
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "hello", resp)

	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[1].Content)
}

func TestHuggingFaceProvider_NoKeyNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	resp, err := NewHuggingFaceProvider("", server.URL, "m").Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestHuggingFaceProvider_RejectsBadReplies(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
		contains  string
	}{
		{"no choices", http.StatusOK, `{"choices":[]}`, true, "no choices"},
		{"choice without message", http.StatusOK, `{"choices":[{"finish_reason":"length"}]}`, true, "without message"},
		{"error body", http.StatusOK, `{"error":{"message":"model is overloaded"}}`, false, "model is overloaded"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid token"}`, false, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHuggingFaceProvider("k", server.URL, "m").Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, llm.ErrMalformedReply))
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestNewHuggingFaceProvider_DefaultBaseURL(t *testing.T) {
	p := NewHuggingFaceProvider("k", "", "m")
	assert.Equal(t, defaultBaseURL, p.baseURL)
}
