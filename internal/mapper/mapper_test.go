package mapper

import (
	"testing"
	"time"

	"customer-service-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageMapper_MetadataSurvives(t *testing.T) {
	m := NewMessageMapper()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	in := &entity.Message{
		SessionID: "s1",
		Content:   "Session handed off to a human agent",
		Role:      "system",
		Timestamp: ts,
		Metadata:  map[string]interface{}{"type": "handoff", "reason": "billing"},
	}

	out := m.ToEntity(m.ToModel(in))
	require.NotNil(t, out)
	assert.Equal(t, "s1", out.SessionID)
	assert.Equal(t, ts, out.Timestamp)
	assert.Equal(t, "handoff", out.Metadata["type"])
	assert.Equal(t, "billing", out.Metadata["reason"])
}

func TestMessageMapper_NoMetadata(t *testing.T) {
	m := NewMessageMapper()
	mdl := m.ToModel(&entity.Message{SessionID: "s1", Role: "user", Content: "hi"})
	assert.Nil(t, mdl.Metadata)
	assert.Nil(t, m.ToEntity(mdl).Metadata)
}

func TestProductMapper_Embedding(t *testing.T) {
	m := NewProductMapper()
	pid := uuid.New()

	in := &entity.ProductEmbedding{
		ProductId: pid,
		Content:   "Name: Laptop",
		Embedding: []float32{0.1, 0.2},
		Metadata: entity.ProductMetadata{
			ProductId: pid,
			Name:      "Laptop",
			Price:     999.99,
			Features:  []string{"16GB RAM"},
		},
	}

	out := m.EmbeddingToEntity(m.EmbeddingToModel(in))
	assert.Equal(t, pid, out.Metadata.ProductId)
	assert.Equal(t, []float32{0.1, 0.2}, out.Embedding)
	assert.Equal(t, []string{"16GB RAM"}, out.Metadata.Features)
	assert.Nil(t, out.UpdatedAt)
}
