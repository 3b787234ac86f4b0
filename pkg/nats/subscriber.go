package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"customer-service-be/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// RetryPolicy bounds redelivery of messages whose handler failed.
// BackOff[i] is the wait before delivery i+2; the last entry repeats.
type RetryPolicy struct {
	MaxDeliver int
	BackOff    []time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxDeliver: 5,
	BackOff:    []time.Duration{2 * time.Second, 10 * time.Second, 30 * time.Second, 2 * time.Minute},
}

// delay returns the wait before redelivering a message delivered n times.
func (p RetryPolicy) delay(delivered uint64) time.Duration {
	if len(p.BackOff) == 0 {
		return time.Second
	}
	i := int(delivered) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(p.BackOff) {
		i = len(p.BackOff) - 1
	}
	return p.BackOff[i]
}

func (p RetryPolicy) exhausted(delivered uint64) bool {
	return p.MaxDeliver > 0 && delivered >= uint64(p.MaxDeliver)
}

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	js       jetstream.JetStream
	policy   RetryPolicy
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(js jetstream.JetStream) *Subscriber {
	return &Subscriber{js: js, policy: DefaultRetryPolicy}
}

// WithRetryPolicy replaces DefaultRetryPolicy for consumers created afterwards.
func (s *Subscriber) WithRetryPolicy(p RetryPolicy) *Subscriber {
	s.policy = p
	return s
}

// Subscribe registers a handler on a durable consumer. A handler error naks
// the message with the policy's delay until MaxDeliver is reached, then the
// message is terminated.
func (s *Subscriber) Subscribe(subject string, durableName string, handler EventHandler) error {
	ctx := context.Background()

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    s.policy.MaxDeliver,
		BackOff:       s.consumerBackOff(),
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		s.handle(msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.contexts = append(s.contexts, cc)
	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// consumerBackOff is the ack-timeout schedule. The server requires it to be
// shorter than MaxDeliver.
func (s *Subscriber) consumerBackOff() []time.Duration {
	b := s.policy.BackOff
	if s.policy.MaxDeliver > 0 && len(b) >= s.policy.MaxDeliver {
		b = b[:s.policy.MaxDeliver-1]
	}
	if len(b) == 0 {
		return nil
	}
	return b
}

func (s *Subscriber) handle(msg jetstream.Msg, handler EventHandler) {
	event, err := decodeEvent(msg.Subject(), msg.Headers().Get(headerOccurredAt), msg.Data())
	if err != nil {
		log.Printf("Error unmarshalling event data: %v", err)
		msg.Term()
		return
	}

	if err := handler(context.Background(), event); err != nil {
		var delivered uint64 = 1
		if meta, metaErr := msg.Metadata(); metaErr == nil {
			delivered = meta.NumDelivered
		}
		if s.policy.exhausted(delivered) {
			log.Printf("Giving up on event %s after %d deliveries: %v", msg.Subject(), delivered, err)
			msg.Term()
			return
		}
		log.Printf("Handler failed for event %s (delivery %d): %v", msg.Subject(), delivered, err)
		msg.NakWithDelay(s.policy.delay(delivered))
		return
	}
	msg.Ack()
}

// Stop halts every consumer started by Subscribe.
func (s *Subscriber) Stop() {
	for _, cc := range s.contexts {
		cc.Stop()
	}
	s.contexts = nil
}

func decodeEvent(subject, occurredAt string, data []byte) (events.BaseEvent, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return events.BaseEvent{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		ts = time.Now()
	}

	return events.BaseEvent{
		Type:       strings.TrimPrefix(subject, SubjectPrefix),
		Data:       payload,
		OccurredAt: ts,
	}, nil
}
