package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customer-service-be/internal/config"
	"customer-service-be/internal/constant"
	"customer-service-be/internal/dto"
	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/agent"
	"customer-service-be/pkg/events"
	"customer-service-be/pkg/history"
)

type IChatService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Handoff(ctx context.Context, req *dto.HandoffRequest) (*dto.HandoffResponse, error)
	GetHistory(ctx context.Context, sessionID string) (*dto.ChatHistoryResponse, error)
	ClearHistory(ctx context.Context, sessionID string) (*dto.ClearHistoryResponse, error)
}

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type chatService struct {
	registry   *agent.Registry
	uowFactory unitofwork.RepositoryFactory
	publisher  EventPublisher
	notifier   IHandoffNotifier
	handoffCfg config.HandoffConfig
	logger     logger.ILogger
	now        func() time.Time
}

// NewChatService wires the chat flow. publisher may be nil, in which case
// handoffs are delivered to notifier inline.
func NewChatService(
	registry *agent.Registry,
	uowFactory unitofwork.RepositoryFactory,
	publisher EventPublisher,
	notifier IHandoffNotifier,
	handoffCfg config.HandoffConfig,
	log logger.ILogger,
) IChatService {
	return &chatService{
		registry:   registry,
		uowFactory: uowFactory,
		publisher:  publisher,
		notifier:   notifier,
		handoffCfg: handoffCfg,
		logger:     log,
		now:        time.Now,
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	var userMsg, replyMsg *entity.Message
	_, err := s.registry.Resolve(req.SessionID).ProcessMessageWith(ctx, req.Message,
		func(ctx context.Context, ex agent.Exchange, appendLog func(context.Context) error) error {
			userMsg = transcriptRow(req.SessionID, ex.User)
			replyMsg = transcriptRow(req.SessionID, ex.Assistant)
			return s.saveTurn(ctx, []*entity.Message{userMsg, replyMsg}, appendLog)
		})
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			return nil, serverutils.NewValidationError("sessionId and message are required", "message")
		}
		return nil, fmt.Errorf("process message for session %s: %w", req.SessionID, err)
	}

	return &dto.SendMessageResponse{
		Message:  toMessageRecord(userMsg),
		Response: toMessageRecord(replyMsg),
	}, nil
}

// saveTurn writes the transcript rows and the history log together. The
// transaction commits only after the history append succeeded, so a failed
// turn leaves neither behind.
func (s *chatService) saveTurn(ctx context.Context, rows []*entity.Message, appendLog func(context.Context) error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().CreateBulk(ctx, rows); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	if err := appendLog(ctx); err != nil {
		return err
	}
	return uow.Commit()
}

func transcriptRow(sessionID string, m history.Message) *entity.Message {
	return &entity.Message{
		SessionID: sessionID,
		Content:   m.Content,
		Role:      m.Role,
		Timestamp: m.Timestamp,
	}
}

func (s *chatService) Handoff(ctx context.Context, req *dto.HandoffRequest) (*dto.HandoffResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = s.handoffCfg.DefaultReason
	}

	res := &dto.HandoffResponse{
		Status:            constant.HandoffStatusInitiated,
		Message:           constant.HandoffMessage,
		Reason:            reason,
		EstimatedWaitTime: s.handoffCfg.EstimatedWaitTime,
	}

	content, err := json.Marshal(map[string]string{
		"status":            res.Status,
		"message":           res.Message,
		"reason":            res.Reason,
		"estimatedWaitTime": res.EstimatedWaitTime,
	})
	if err != nil {
		return nil, err
	}

	event := &entity.Message{
		SessionID: req.SessionID,
		Content:   string(content),
		Role:      constant.MessageRoleSystem,
		Timestamp: s.now(),
		Metadata: map[string]interface{}{
			constant.MetadataKeyType:   constant.MetadataTypeHandoff,
			constant.MetadataKeyReason: reason,
			constant.MetadataKeyStatus: res.Status,
			constant.MetadataKeyWait:   res.EstimatedWaitTime,
		},
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record handoff for session %s: %w", req.SessionID, err)
	}

	// The next message on this session gets a fresh orchestrator.
	s.registry.Release(req.SessionID)

	s.dispatchHandoff(ctx, dto.HandoffNotification{
		SessionID:         req.SessionID,
		Reason:            reason,
		EstimatedWaitTime: res.EstimatedWaitTime,
		Status:            res.Status,
		OccurredAt:        event.Timestamp,
	})

	s.logger.Info("CHAT", "Session handed off", map[string]interface{}{
		"session_id": req.SessionID,
		"reason":     reason,
	})

	res.Event = toMessageRecord(event)
	return res, nil
}

// dispatchHandoff is best effort: the handoff is already recorded.
func (s *chatService) dispatchHandoff(ctx context.Context, n dto.HandoffNotification) {
	if s.publisher != nil {
		evt := events.BaseEvent{
			Type:       constant.HandoffEventType,
			Data:       HandoffEventPayload(n),
			OccurredAt: n.OccurredAt,
		}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Error("CHAT", "Failed to publish handoff event", map[string]interface{}{
				"session_id": n.SessionID,
				"error":      err.Error(),
			})
		}
		return
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("CHAT", "Inline handoff notification failed", map[string]interface{}{
				"session_id": n.SessionID,
				"error":      err.Error(),
			})
		}
	}
}

func (s *chatService) GetHistory(ctx context.Context, sessionID string) (*dto.ChatHistoryResponse, error) {
	if sessionID == "" {
		return nil, serverutils.NewValidationError("sessionId is required", "sessionId")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.Chronological{},
	)
	if err != nil {
		return nil, fmt.Errorf("load transcript for session %s: %w", sessionID, err)
	}

	records := make([]dto.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, toMessageRecord(m))
	}

	return &dto.ChatHistoryResponse{
		SessionID: sessionID,
		Messages:  records,
	}, nil
}

func (s *chatService) ClearHistory(ctx context.Context, sessionID string) (*dto.ClearHistoryResponse, error) {
	if sessionID == "" {
		return nil, serverutils.NewValidationError("sessionId is required", "sessionId")
	}

	if err := s.registry.Resolve(sessionID).ClearHistory(ctx); err != nil {
		return nil, fmt.Errorf("clear history for session %s: %w", sessionID, err)
	}

	return &dto.ClearHistoryResponse{SessionID: sessionID, Cleared: true}, nil
}

func toMessageRecord(m *entity.Message) dto.MessageRecord {
	return dto.MessageRecord{
		ID:        m.ID,
		SessionID: m.SessionID,
		Content:   m.Content,
		Role:      m.Role,
		Timestamp: m.Timestamp,
		Metadata:  m.Metadata,
	}
}
