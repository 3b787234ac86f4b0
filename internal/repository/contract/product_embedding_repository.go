package contract

import (
	"context"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredProductEmbedding wraps ProductEmbedding with its similarity score
type ScoredProductEmbedding struct {
	Embedding  *entity.ProductEmbedding
	Similarity float64 // cosine similarity, 1.0 = identical
}

type ProductEmbeddingRepository interface {
	// Upsert replaces the single embedding row of a product.
	Upsert(ctx context.Context, embedding *entity.ProductEmbedding) error
	DeleteByProductId(ctx context.Context, productId uuid.UUID) error
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore orders by cosine similarity, highest first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredProductEmbedding, error)
}
