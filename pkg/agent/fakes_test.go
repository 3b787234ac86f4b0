package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/history"
	"customer-service-be/pkg/llm"
)

const testSystemPrompt = "You are a helpful customer service agent for an e-commerce store."

// flakyStore wraps a MemoryStore and fails the first N appends or every read.
type flakyStore struct {
	*history.MemoryStore
	failAppends int32
	failReads   bool
	appends     int32
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: history.NewMemoryStore()}
}

func (s *flakyStore) Append(ctx context.Context, sessionID string, msgs ...history.Message) error {
	atomic.AddInt32(&s.appends, 1)
	if atomic.LoadInt32(&s.failAppends) > 0 {
		atomic.AddInt32(&s.failAppends, -1)
		return errors.New("redis: connection refused")
	}
	return s.MemoryStore.Append(ctx, sessionID, msgs...)
}

func (s *flakyStore) Messages(ctx context.Context, sessionID string) ([]history.Message, error) {
	if s.failReads {
		return nil, errors.New("redis: i/o timeout")
	}
	return s.MemoryStore.Messages(ctx, sessionID)
}

// lostAckStore stores the first append but reports it as failed, like a
// Redis write that executed after the client timed out.
type lostAckStore struct {
	*history.MemoryStore
	appends int32
}

func (s *lostAckStore) Append(ctx context.Context, sessionID string, msgs ...history.Message) error {
	n := atomic.AddInt32(&s.appends, 1)
	if err := s.MemoryStore.Append(ctx, sessionID, msgs...); err != nil {
		return err
	}
	if n == 1 {
		return errors.New("redis: i/o timeout")
	}
	return nil
}

type fixedSearcher struct {
	docs    []catalog.ProductDocument
	err     error
	queries []string
	mu      sync.Mutex
}

func (s *fixedSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.ProductDocument, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

// echoGenerator replies with the last user message, prefixed.
type echoGenerator struct {
	mu      sync.Mutex
	prompts [][]llm.Message
	delay   time.Duration
}

func (g *echoGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "echo: " + prompt[len(prompt)-1].Content, nil
}

func (g *echoGenerator) lastPrompt() []llm.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[len(g.prompts)-1]
}

type failingGenerator struct{ err error }

func (g failingGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	return "", g.err
}

type blankGenerator struct{}

func (blankGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	return "   \n", nil
}

func laptopDocs() []catalog.ProductDocument {
	return []catalog.ProductDocument{
		{Content: "Name: Laptop Pro 15\nDescription: Work laptop\nPrice: 1499.00\nFeatures: 16GB RAM, 1TB SSD", Score: 0.91},
		{Content: "Name: Laptop Air 13\nDescription: Light laptop\nPrice: 999.00\nFeatures: 8GB RAM", Score: 0.87},
	}
}

func testDeps(store history.Store, searcher catalog.Searcher, gen Generator) Dependencies {
	return Dependencies{
		Store:     store,
		Searcher:  searcher,
		Generator: gen,
		Config: Config{
			SystemPrompt:    testSystemPrompt,
			SearchLimit:     3,
			PersistRetryMax: 200 * time.Millisecond,
		},
		Now: func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func contents(msgs []history.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role + ":" + strings.TrimSpace(m.Content)
	}
	return out
}
