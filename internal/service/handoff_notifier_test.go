package service

import (
	"context"
	"testing"
	"time"

	"customer-service-be/internal/constant"
	"customer-service-be/internal/dto"
	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoffPayloadRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	n := dto.HandoffNotification{
		SessionID:         "s1",
		Reason:            "angry customer",
		EstimatedWaitTime: "5-10 minutes",
		Status:            "handoff_initiated",
		OccurredAt:        at,
	}

	got, err := HandoffFromPayload(HandoffEventPayload(n))
	require.NoError(t, err)
	assert.Equal(t, n.SessionID, got.SessionID)
	assert.Equal(t, n.Reason, got.Reason)
	assert.Equal(t, n.EstimatedWaitTime, got.EstimatedWaitTime)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestHandoffFromPayload_MissingSession(t *testing.T) {
	_, err := HandoffFromPayload(map[string]interface{}{"reason": "x"})
	assert.Error(t, err)
}

func TestNotify_DeliversTranscriptAndEmail(t *testing.T) {
	factory := newFakeFactory()
	for i := 0; i < transcriptTail+5; i++ {
		require.NoError(t, factory.uow.messages.Create(context.Background(), &entity.Message{SessionID: "s1", Content: "m", Role: "user"}))
	}
	require.NoError(t, factory.uow.messages.Create(context.Background(), &entity.Message{SessionID: "other", Content: "x", Role: "user"}))

	delivery := &fakeDelivery{}
	mail := &fakeMailer{}
	n := NewHandoffNotifier(nil, delivery, mail, factory, "support@example.com", logger.NewNopLogger())

	err := n.Notify(context.Background(), dto.HandoffNotification{SessionID: "s1", Reason: "r"})
	require.NoError(t, err)

	require.Len(t, delivery.got, 1)
	assert.Len(t, delivery.got[0].Transcript, transcriptTail)
	for _, m := range delivery.got[0].Transcript {
		assert.Equal(t, "s1", m.SessionID)
	}

	assert.Equal(t, []string{"support@example.com"}, mail.to)
}

func TestNotify_NoSupportEmailSkipsMail(t *testing.T) {
	mail := &fakeMailer{}
	n := NewHandoffNotifier(nil, &fakeDelivery{}, mail, newFakeFactory(), "", logger.NewNopLogger())

	require.NoError(t, n.Notify(context.Background(), dto.HandoffNotification{SessionID: "s1"}))
	assert.Empty(t, mail.sent)
}

func TestHandleEvent_MailFailureDoesNotAskForRedelivery(t *testing.T) {
	delivery := &fakeDelivery{}
	n := NewHandoffNotifier(nil, delivery, &fakeMailer{err: errBoom}, newFakeFactory(), "ops@example.com", logger.NewNopLogger())

	event := events.New(constant.HandoffEventType, HandoffEventPayload(dto.HandoffNotification{SessionID: "s1", Reason: "r"}))
	err := n.handleEvent(context.Background(), event)

	assert.NoError(t, err, "an error here would nak the event and broadcast it again")
	require.Len(t, delivery.got, 1)
	assert.Equal(t, "s1", delivery.got[0].SessionID)
}

func TestHandleEvent_DropsMalformed(t *testing.T) {
	delivery := &fakeDelivery{}
	n := NewHandoffNotifier(nil, delivery, nil, nil, "", logger.NewNopLogger())

	err := n.handleEvent(context.Background(), events.New("SESSION_HANDOFF", map[string]interface{}{}))
	assert.NoError(t, err)
	assert.Empty(t, delivery.got)
}

func TestStart_WithoutBusIsNoop(t *testing.T) {
	n := NewHandoffNotifier(nil, nil, nil, nil, "", logger.NewNopLogger())
	assert.NoError(t, n.Start())
}
