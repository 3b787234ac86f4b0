package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	opts := database.DefaultPoolOptions
	opts.Quiet = true
	db, err := database.NewGormDBWithOptions(dsn, opts)
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))
	return db
}

func oneHot(i int) []float32 {
	v := make([]float32, model.EmbeddingDimensions)
	v[i%model.EmbeddingDimensions] = 1
	return v
}

func TestMessageRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	sessionID := "it-" + uuid.NewString()
	t.Cleanup(func() { _ = uow.MessageRepository().DeleteBySessionID(ctx, sessionID) })

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, uow.MessageRepository().CreateBulk(ctx, []*entity.Message{
		{SessionID: sessionID, Content: "hello", Role: "user", Timestamp: base},
		{SessionID: sessionID, Content: "hi there", Role: "assistant", Timestamp: base.Add(time.Millisecond)},
	}))
	require.NoError(t, uow.MessageRepository().Create(ctx, &entity.Message{
		SessionID: sessionID,
		Content:   `{"status":"handoff_initiated"}`,
		Role:      "system",
		Timestamp: base.Add(2 * time.Millisecond),
		Metadata:  map[string]interface{}{"type": "handoff"},
	}))

	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.Chronological{},
	)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"user", "assistant", "system"}, []string{msgs[0].Role, msgs[1].Role, msgs[2].Role})
	assert.Equal(t, "handoff", msgs[2].Metadata["type"])
}

func TestProductEmbeddingSearch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	products := []*entity.Product{
		{Id: uuid.New(), Name: "it laptop", Price: 999, Stock: 3, Features: []string{"16GB RAM"}, CreatedAt: time.Now()},
		{Id: uuid.New(), Name: "it mouse", Price: 19, Stock: 30, Features: []string{"wireless"}, CreatedAt: time.Now()},
	}
	require.NoError(t, uow.ProductRepository().CreateBulk(ctx, products))
	t.Cleanup(func() {
		for _, p := range products {
			_ = uow.ProductEmbeddingRepository().DeleteByProductId(ctx, p.Id)
			_ = uow.ProductRepository().Delete(ctx, p.Id)
		}
	})

	for i, p := range products {
		require.NoError(t, uow.ProductEmbeddingRepository().Upsert(ctx, &entity.ProductEmbedding{
			Id:        uuid.New(),
			ProductId: p.Id,
			Content:   "Name: " + p.Name,
			Embedding: oneHot(1000 + i),
			Metadata:  entity.ProductMetadata{ProductId: p.Id, Name: p.Name, Price: p.Price, Features: p.Features},
			CreatedAt: time.Now(),
		}))
	}

	// upserting again replaces instead of duplicating
	require.NoError(t, uow.ProductEmbeddingRepository().Upsert(ctx, &entity.ProductEmbedding{
		Id:        uuid.New(),
		ProductId: products[0].Id,
		Content:   "Name: it laptop v2",
		Embedding: oneHot(1000),
		Metadata:  entity.ProductMetadata{ProductId: products[0].Id, Name: "it laptop"},
		CreatedAt: time.Now(),
	}))

	hits, err := uow.ProductEmbeddingRepository().SearchSimilarWithScore(ctx, oneHot(1000), 1, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, products[0].Id, hits[0].Embedding.ProductId)
	assert.Equal(t, "Name: it laptop v2", hits[0].Embedding.Content)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}
