package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/history"
	"customer-service-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "customer-service-be/pkg/agent"

type Config struct {
	SystemPrompt    string
	SearchLimit     int
	HistoryTimeout  time.Duration
	SearchTimeout   time.Duration
	LLMTimeout      time.Duration
	PersistRetryMax time.Duration
}

func (c Config) withDefaults() Config {
	if c.SearchLimit <= 0 {
		c.SearchLimit = catalog.DefaultLimit
	}
	if c.HistoryTimeout <= 0 {
		c.HistoryTimeout = 5 * time.Second
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 10 * time.Second
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 60 * time.Second
	}
	if c.PersistRetryMax <= 0 {
		c.PersistRetryMax = 10 * time.Second
	}
	return c
}

// Dependencies are shared by every orchestrator a Registry builds.
type Dependencies struct {
	Store     history.Store
	Searcher  catalog.Searcher
	Generator Generator
	Logger    logger.ILogger
	Config    Config
	Now       func() time.Time
}

// Orchestrator runs one session's conversation turns. Its only state is the
// session id; everything durable lives in the history store.
type Orchestrator struct {
	sessionID string
	deps      Dependencies
	locks     *KeyedMutex
	tracer    trace.Tracer
}

func newOrchestrator(sessionID string, deps Dependencies, locks *KeyedMutex) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	deps.Config = deps.Config.withDefaults()
	deps.Searcher = catalog.NewFailClosed(deps.Searcher, deps.Logger)

	return &Orchestrator{
		sessionID: sessionID,
		deps:      deps,
		locks:     locks,
		tracer:    otel.Tracer(tracerName),
	}
}

func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// turn carries the data of one ProcessMessage call between stages.
type turn struct {
	id         string
	message    string
	receivedAt time.Time
	record     RecordFunc
	past       []history.Message
	products   []catalog.ProductDocument
	prompt     []llm.Message
	raw        string
	reply      string
	exchange   Exchange
}

type stage struct {
	name string
	run  func(ctx context.Context, t *turn) error
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{"load_history", o.loadHistory},
		{"retrieve", o.retrieve},
		{"compose", o.compose},
		{"generate", o.generate},
		{"parse", o.parse},
		{"persist", o.persist},
	}
}

// Exchange is the user message and reply a successful turn stored, with the
// timestamps written to history.
type Exchange struct {
	User      history.Message
	Assistant history.Message
}

// RecordFunc stores an exchange somewhere besides the history log. It runs
// inside the persist stage while the session lock is held. appendLog writes
// the exchange to the history store; the exchange is only in history if
// RecordFunc calls it and it returns nil.
type RecordFunc func(ctx context.Context, ex Exchange, appendLog func(ctx context.Context) error) error

// ProcessMessage answers one user message. On success the user message and
// the reply are both in history, in that order, and the reply is returned.
// On failure history is exactly what it was before the call.
func (o *Orchestrator) ProcessMessage(ctx context.Context, message string) (string, error) {
	ex, err := o.ProcessMessageWith(ctx, message, nil)
	if err != nil {
		return "", err
	}
	return ex.Assistant.Content, nil
}

// ProcessMessageWith is ProcessMessage with a hook that records the exchange
// in the same critical section as the history append. A nil record appends
// to history only.
func (o *Orchestrator) ProcessMessageWith(ctx context.Context, message string, record RecordFunc) (Exchange, error) {
	if strings.TrimSpace(message) == "" {
		return Exchange{}, ErrEmptyMessage
	}

	unlock := o.locks.Lock(o.sessionID)
	defer unlock()

	ctx, span := o.tracer.Start(ctx, "agent.ProcessMessage",
		trace.WithAttributes(attribute.String("session.id", o.sessionID)))
	defer span.End()

	t := &turn{
		id:         uuid.NewString(),
		message:    message,
		receivedAt: o.deps.Now(),
		record:     record,
	}
	for _, st := range o.stages() {
		if err := o.runStage(ctx, st, t); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, st.name)
			o.deps.Logger.Error("AGENT", "Turn failed", map[string]interface{}{
				"session_id": o.sessionID,
				"stage":      st.name,
				"error":      err.Error(),
			})
			return Exchange{}, err
		}
	}

	return t.exchange, nil
}

func (o *Orchestrator) runStage(ctx context.Context, st stage, t *turn) error {
	ctx, span := o.tracer.Start(ctx, "agent."+st.name)
	defer span.End()

	start := time.Now()
	err := st.run(ctx, t)
	o.deps.Logger.Debug("AGENT", "Stage finished", map[string]interface{}{
		"session_id": o.sessionID,
		"stage":      st.name,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"ok":         err == nil,
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (o *Orchestrator) loadHistory(ctx context.Context, t *turn) error {
	ctx, cancel := context.WithTimeout(ctx, o.deps.Config.HistoryTimeout)
	defer cancel()

	past, err := o.deps.Store.Messages(ctx, o.sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	t.past = past
	return nil
}

func (o *Orchestrator) retrieve(ctx context.Context, t *turn) error {
	ctx, cancel := context.WithTimeout(ctx, o.deps.Config.SearchTimeout)
	defer cancel()

	// The fail-closed searcher never errors.
	docs, _ := o.deps.Searcher.Search(ctx, t.message, o.deps.Config.SearchLimit)
	t.products = docs
	return nil
}

func (o *Orchestrator) compose(ctx context.Context, t *turn) error {
	t.prompt = Compose(o.deps.Config.SystemPrompt, t.past, ContextBlock(t.products), t.message)
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, t *turn) error {
	ctx, cancel := context.WithTimeout(ctx, o.deps.Config.LLMTimeout)
	defer cancel()

	raw, err := o.deps.Generator.Generate(ctx, t.prompt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	t.raw = raw
	return nil
}

func (o *Orchestrator) parse(ctx context.Context, t *turn) error {
	reply := strings.TrimSpace(t.raw)
	if reply == "" {
		return fmt.Errorf("%w: empty reply", ErrGeneration)
	}
	t.reply = reply
	return nil
}

// persist appends the exchange as a single write, retrying transient failures.
// Both messages carry the turn id, so a retry after a write that landed but
// timed out does not store the pair twice. The reply is only returned once
// it is stored.
func (o *Orchestrator) persist(ctx context.Context, t *turn) error {
	ex := Exchange{
		User:      history.Message{Role: history.RoleUser, Content: t.message, Timestamp: t.receivedAt, TurnID: t.id},
		Assistant: history.Message{Role: history.RoleAssistant, Content: t.reply, Timestamp: o.deps.Now(), TurnID: t.id},
	}

	if t.record == nil {
		if err := o.appendExchange(ctx, ex); err != nil {
			return err
		}
	} else if err := t.record(ctx, ex, func(ctx context.Context) error {
		return o.appendExchange(ctx, ex)
	}); err != nil {
		if errors.Is(err, ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: record exchange: %v", ErrPersistence, err)
	}

	t.exchange = ex
	return nil
}

func (o *Orchestrator) appendExchange(ctx context.Context, ex Exchange) error {
	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		actx, cancel := context.WithTimeout(ctx, o.deps.Config.HistoryTimeout)
		defer cancel()

		err := o.deps.Store.Append(actx, o.sessionID, ex.User, ex.Assistant)
		if errors.Is(err, history.ErrEmptySessionID) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(o.deps.Config.PersistRetryMax),
	)
	if err != nil {
		return fmt.Errorf("%w: append after %d attempts: %v", ErrPersistence, attempts, err)
	}
	return nil
}

// ClearHistory wipes the session log. It waits for any in-flight turn.
func (o *Orchestrator) ClearHistory(ctx context.Context) error {
	unlock := o.locks.Lock(o.sessionID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, o.deps.Config.HistoryTimeout)
	defer cancel()

	if err := o.deps.Store.Clear(ctx, o.sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	o.deps.Logger.Info("AGENT", "History cleared", map[string]interface{}{"session_id": o.sessionID})
	return nil
}

// History returns the stored turns of the session, oldest first.
func (o *Orchestrator) History(ctx context.Context) ([]history.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, o.deps.Config.HistoryTimeout)
	defer cancel()

	msgs, err := o.deps.Store.Messages(ctx, o.sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
