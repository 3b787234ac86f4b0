package service

import (
	"context"
	"encoding/json"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ProductIndexer is implemented by catalog.Indexer.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, productID uuid.UUID) error
	IndexAll(ctx context.Context) (int, error)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	indexer    ProductIndexer
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexer ProductIndexer,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		indexer:    indexer,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexProductMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INDEX_CONSUMER", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// invalid payloads are acked so they are not redelivered forever
		msg.Ack()
		return
	}

	if payload.ProductID == nil {
		count, err := cs.indexer.IndexAll(ctx)
		if err != nil {
			cs.logger.Error("INDEX_CONSUMER", "Catalog reindex failed", map[string]interface{}{
				"indexed": count,
				"error":   err.Error(),
			})
			msg.Nack()
			return
		}
		cs.logger.Info("INDEX_CONSUMER", "Catalog reindexed", map[string]interface{}{"indexed": count})
		msg.Ack()
		return
	}

	if err := cs.indexer.IndexProduct(ctx, *payload.ProductID); err != nil {
		cs.logger.Error("INDEX_CONSUMER", "Product reindex failed", map[string]interface{}{
			"product_id": payload.ProductID.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("INDEX_CONSUMER", "Product reindexed", map[string]interface{}{"product_id": payload.ProductID.String()})
	msg.Ack()
}
