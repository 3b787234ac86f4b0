package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"customer-service-be/pkg/history"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../.env")

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRedisStore(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	store := history.NewRedisStore(rdb, history.WithKeyPrefix("it_message_store:"), history.WithTTL(time.Minute))

	sessionID := uuid.NewString()
	t.Cleanup(func() { _ = store.Clear(ctx, sessionID) })

	now := time.Now()
	require.NoError(t, store.Append(ctx, sessionID,
		history.Message{Role: history.RoleUser, Content: "hello", Timestamp: now},
		history.Message{Role: history.RoleAssistant, Content: "hi", Timestamp: now},
	))
	require.NoError(t, store.Append(ctx, sessionID,
		history.Message{Role: history.RoleUser, Content: "laptops?", Timestamp: now},
		history.Message{Role: history.RoleAssistant, Content: "three", Timestamp: now},
	))

	msgs, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, history.RoleAssistant, msgs[3].Role)

	ttl, err := rdb.TTL(ctx, "it_message_store:"+sessionID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A retried append of the last turn is a no-op.
	retried := []history.Message{
		{Role: history.RoleUser, Content: "again?", Timestamp: now, TurnID: "turn-3"},
		{Role: history.RoleAssistant, Content: "yes", Timestamp: now, TurnID: "turn-3"},
	}
	require.NoError(t, store.Append(ctx, sessionID, retried...))
	require.NoError(t, store.Append(ctx, sessionID, retried...))
	msgs, err = store.Messages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 6)
	assert.Equal(t, "turn-3", msgs[5].TurnID)

	require.NoError(t, store.Clear(ctx, sessionID))
	msgs, err = store.Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
