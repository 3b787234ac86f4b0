package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"customer-service-be/pkg/llm"
)

const (
	providerName     = "huggingface"
	defaultBaseURL   = "https://router.huggingface.co/v1"
	defaultMaxTokens = 500
)

// HuggingFaceProvider calls the OpenAI-compatible chat completions route of
// the Hugging Face inference router.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message      *llm.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Options{Model: p.model, MaxTokens: defaultMaxTokens, Temperature: 0.7}
	for _, o := range options {
		o(&opts)
	}

	req := chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: &opts.Temperature,
	}

	header := http.Header{}
	if p.apiKey != "" {
		header.Set("Authorization", "Bearer "+p.apiKey)
	}

	var resp chatResponse
	if err := llm.PostJSON(ctx, p.client, providerName, p.baseURL+"/chat/completions", header, req, &resp); err != nil {
		return "", err
	}
	return firstChoice(resp)
}

func firstChoice(resp chatResponse) (string, error) {
	if resp.Error != nil {
		return "", fmt.Errorf("%s: %s", providerName, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: no choices", llm.ErrMalformedReply, providerName)
	}
	choice := resp.Choices[0]
	if choice.Message == nil {
		return "", fmt.Errorf("%w: %s: choice without message", llm.ErrMalformedReply, providerName)
	}
	return choice.Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
