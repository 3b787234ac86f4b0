package service

import (
	"context"
	"fmt"
	"time"

	"customer-service-be/internal/constant"
	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/mailer"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/events"
	pktNats "customer-service-be/pkg/nats"
)

// transcriptTail bounds how much conversation is attached to an alert.
const transcriptTail = 20

// HandoffDelivery pushes a handoff to connected human agents.
// Implemented by the websocket Hub.
type HandoffDelivery interface {
	BroadcastHandoff(n dto.HandoffNotification)
}

type IHandoffNotifier interface {
	Start() error
	Notify(ctx context.Context, n dto.HandoffNotification) error
}

type HandoffNotifier struct {
	subscriber   *pktNats.Subscriber
	delivery     HandoffDelivery
	mailer       mailer.IEmailService
	uowFactory   unitofwork.RepositoryFactory
	supportEmail string
	logger       logger.ILogger
}

func NewHandoffNotifier(
	sub *pktNats.Subscriber,
	delivery HandoffDelivery,
	mail mailer.IEmailService,
	uowFactory unitofwork.RepositoryFactory,
	supportEmail string,
	log logger.ILogger,
) *HandoffNotifier {
	return &HandoffNotifier{
		subscriber:   sub,
		delivery:     delivery,
		mailer:       mail,
		uowFactory:   uowFactory,
		supportEmail: supportEmail,
		logger:       log,
	}
}

// Start listens for handoff events on the bus. Without a subscriber it does
// nothing and handoffs arrive through Notify.
func (s *HandoffNotifier) Start() error {
	if s.subscriber == nil {
		s.logger.Warn("HandoffNotifier", "No event bus, handoffs are delivered inline", nil)
		return nil
	}

	subject := pktNats.Subject(constant.HandoffEventType)
	if err := s.subscriber.Subscribe(subject, constant.HandoffDurableName, s.handleEvent); err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.logger.Info("HandoffNotifier", "Listening for handoffs", map[string]interface{}{"subject": subject})
	return nil
}

func (s *HandoffNotifier) handleEvent(ctx context.Context, event events.Event) error {
	n, err := HandoffFromPayload(event.Payload())
	if err != nil {
		// malformed events are dropped, retrying cannot fix them
		s.logger.Warn("HandoffNotifier", "Dropping malformed handoff event", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return s.Notify(ctx, n)
}

// Notify attaches the recent transcript and fans the handoff out to agents.
// The support e-mail is best effort: a failed send is logged and does not
// fail the call, so a redelivered event never reaches the agents twice.
func (s *HandoffNotifier) Notify(ctx context.Context, n dto.HandoffNotification) error {
	if s.uowFactory != nil {
		transcript, err := s.recentTranscript(ctx, n.SessionID)
		if err != nil {
			s.logger.Warn("HandoffNotifier", "Transcript unavailable", map[string]interface{}{
				"session_id": n.SessionID,
				"error":      err.Error(),
			})
		}
		n.Transcript = transcript
	}

	if s.delivery != nil {
		s.delivery.BroadcastHandoff(n)
	}

	if s.mailer != nil && s.supportEmail != "" {
		if err := s.mailer.SendHandoffAlert(s.supportEmail, n); err != nil {
			s.logger.Error("HandoffNotifier", "Handoff alert e-mail failed", map[string]interface{}{
				"session_id": n.SessionID,
				"to":         s.supportEmail,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("HandoffNotifier", "Handoff delivered", map[string]interface{}{"session_id": n.SessionID})
	return nil
}

func (s *HandoffNotifier) recentTranscript(ctx context.Context, sessionID string) ([]dto.MessageRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.Chronological{},
	)
	if err != nil {
		return nil, err
	}
	if len(msgs) > transcriptTail {
		msgs = msgs[len(msgs)-transcriptTail:]
	}

	records := make([]dto.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, toMessageRecord(m))
	}
	return records, nil
}

func HandoffEventPayload(n dto.HandoffNotification) map[string]interface{} {
	return map[string]interface{}{
		"session_id":          n.SessionID,
		"reason":              n.Reason,
		"estimated_wait_time": n.EstimatedWaitTime,
		"status":              n.Status,
		"occurred_at":         n.OccurredAt.Format(time.RFC3339Nano),
	}
}

func HandoffFromPayload(payload map[string]interface{}) (dto.HandoffNotification, error) {
	sessionID, _ := payload["session_id"].(string)
	if sessionID == "" {
		return dto.HandoffNotification{}, fmt.Errorf("missing session_id")
	}

	n := dto.HandoffNotification{SessionID: sessionID}
	n.Reason, _ = payload["reason"].(string)
	n.EstimatedWaitTime, _ = payload["estimated_wait_time"].(string)
	n.Status, _ = payload["status"].(string)

	if raw, ok := payload["occurred_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			n.OccurredAt = ts
		}
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now()
	}
	return n, nil
}
