package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/agent"
	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/history"
	"customer-service-be/pkg/llm"
)

type fakeMessageRepo struct {
	contract.MessageRepository
	mu        sync.Mutex
	rows      []*entity.Message
	nextID    uint
	createErr error
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	return r.CreateBulk(ctx, []*entity.Message{m})
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, msgs []*entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, m := range msgs {
		r.nextID++
		m.ID = r.nextID
		r.rows = append(r.rows, m)
	}
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID := ""
	for _, s := range specs {
		if by, ok := s.(specification.BySessionID); ok {
			sessionID = by.SessionID
		}
	}

	var out []*entity.Message
	for _, m := range r.rows {
		if sessionID == "" || m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeUoW struct {
	unitofwork.UnitOfWork
	messages  *fakeMessageRepo
	committed int
}

func (u *fakeUoW) Begin(ctx context.Context) error { return nil }
func (u *fakeUoW) Commit() error                    { u.committed++; return nil }
func (u *fakeUoW) Rollback() error                  { return nil }

func (u *fakeUoW) MessageRepository() contract.MessageRepository { return u.messages }

type fakeFactory struct {
	uow *fakeUoW
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUoW{messages: &fakeMessageRepo{}}}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type fakeNotifier struct {
	notified []dto.HandoffNotification
}

func (n *fakeNotifier) Start() error { return nil }

func (n *fakeNotifier) Notify(ctx context.Context, h dto.HandoffNotification) error {
	n.notified = append(n.notified, h)
	return nil
}

type fakeDelivery struct {
	got []dto.HandoffNotification
}

func (d *fakeDelivery) BroadcastHandoff(n dto.HandoffNotification) {
	d.got = append(d.got, n)
}

type fakeMailer struct {
	to   []string
	sent []dto.HandoffNotification
	err  error
}

func (m *fakeMailer) SendHandoffAlert(toEmail string, n dto.HandoffNotification) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, toEmail)
	m.sent = append(m.sent, n)
	return nil
}

type staticSearcher struct {
	docs []catalog.ProductDocument
	err  error
}

func (s staticSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.ProductDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

// replyGenerator answers with a fixed reply, or fails when err is set.
type replyGenerator struct {
	reply string
	err   error
}

func (g replyGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// delayedGenerator answers "reply-<message>" after the delay configured for
// that message.
type delayedGenerator struct {
	delays map[string]time.Duration
}

func (g delayedGenerator) Generate(ctx context.Context, prompt []llm.Message) (string, error) {
	msg := prompt[len(prompt)-1].Content
	if d := g.delays[msg]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "reply-" + msg, nil
}

var errBoom = errors.New("boom")

func newTestRegistry(store history.Store, gen agent.Generator) *agent.Registry {
	return agent.NewRegistry(agent.Dependencies{
		Store:     store,
		Searcher:  staticSearcher{},
		Generator: gen,
		Logger:    logger.NewNopLogger(),
		Config:    agent.Config{SystemPrompt: "You are a helpful assistant."},
	}, 0)
}
