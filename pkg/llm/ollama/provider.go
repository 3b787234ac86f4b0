package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"customer-service-be/pkg/llm"
)

const providerName = "ollama"

// OllamaProvider talks to a local Ollama server through /api/chat with
// streaming off.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

// Temperature is a pointer so an explicit 0 is sent instead of the server default.
type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model      string       `json:"model"`
	Message    *llm.Message `json:"message"`
	Done       bool         `json:"done"`
	DoneReason string       `json:"done_reason"`
	Error      string       `json:"error"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Options{Temperature: 0.7, Model: o.ModelName}
	for _, opt := range opts {
		opt(&options)
	}

	req := chatRequest{
		Model:    options.Model,
		Messages: history,
		Options: chatOptions{
			Temperature: &options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}

	var resp chatResponse
	if err := llm.PostJSON(ctx, o.Client, providerName, o.BaseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", err
	}
	return replyText(resp)
}

// replyText accepts only a finished, non-streamed assistant message.
func replyText(resp chatResponse) (string, error) {
	switch {
	case resp.Error != "":
		return "", fmt.Errorf("%s: %s", providerName, resp.Error)
	case resp.Message == nil:
		return "", fmt.Errorf("%w: %s: no message", llm.ErrMalformedReply, providerName)
	case !resp.Done:
		return "", fmt.Errorf("%w: %s: reply not finished", llm.ErrMalformedReply, providerName)
	case resp.Message.Role != "" && resp.Message.Role != llm.RoleAssistant:
		return "", fmt.Errorf("%w: %s: unexpected role %q", llm.ErrMalformedReply, providerName, resp.Message.Role)
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
