package agent

import (
	"context"

	"customer-service-be/pkg/llm"
)

// Generator turns a composed prompt into reply text.
type Generator interface {
	Generate(ctx context.Context, prompt []llm.Message) (string, error)
}

// LLMGenerator sends the prompt to a chat model with fixed sampling options.
type LLMGenerator struct {
	provider llm.LLMProvider
	opts     []llm.Option
}

func NewLLMGenerator(provider llm.LLMProvider, opts ...llm.Option) *LLMGenerator {
	return &LLMGenerator{provider: provider, opts: opts}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	return g.provider.Chat(ctx, prompt, g.opts...)
}
