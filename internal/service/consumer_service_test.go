package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"customer-service-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	mu       sync.Mutex
	products []uuid.UUID
	all      int
}

func (f *fakeIndexer) IndexProduct(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, id)
	return nil
}

func (f *fakeIndexer) IndexAll(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
	return 3, nil
}

func (f *fakeIndexer) snapshot() ([]uuid.UUID, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.products...), f.all
}

func TestConsumerRunsIndexer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	indexer := &fakeIndexer{}
	require.NoError(t, NewConsumerService(pubSub, "INDEX_PRODUCT", indexer, logger.NewNopLogger()).Consume(ctx))

	publisher := NewPublisherService("INDEX_PRODUCT", pubSub)
	id := uuid.New()
	require.NoError(t, publisher.Publish(ctx, []byte(`{"product_id":"`+id.String()+`"}`)))
	require.NoError(t, publisher.Publish(ctx, []byte(`{}`)))
	require.NoError(t, publisher.Publish(ctx, []byte(`garbage`)))

	assert.Eventually(t, func() bool {
		products, all := indexer.snapshot()
		return len(products) == 1 && all == 1
	}, 2*time.Second, 10*time.Millisecond)

	products, _ := indexer.snapshot()
	assert.Equal(t, id, products[0])
}
