package implementation

import (
	"context"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductEmbeddingRepository(db *gorm.DB) contract.ProductEmbeddingRepository {
	return &ProductEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.ProductEmbedding) error {
	m := r.mapper.EmbeddingToModel(embedding)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "embedding", "metadata", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.EmbeddingToEntity(m)
	return nil
}

func (r *ProductEmbeddingRepositoryImpl) DeleteByProductId(ctx context.Context, productId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productId).Delete(&model.ProductEmbedding{}).Error
}

func (r *ProductEmbeddingRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.ProductEmbedding{}).Error
}

func (r *ProductEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error) {
	var models []*model.ProductEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ProductEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EmbeddingToEntity(m)
	}
	return entities, nil
}

func (r *ProductEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ProductEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// scoredRow is a product_embeddings row with its cosine similarity to the query.
type scoredRow struct {
	model.ProductEmbedding
	Similarity float64
}

// similarityQuery orders by cosine distance, nearest first. pgvector <=> is
// cosine distance, so similarity = 1 - distance. A threshold <= 0 means no
// cutoff: the nearest limit rows come back whatever their score.
func (r *ProductEmbeddingRepositoryImpl) similarityQuery(ctx context.Context, embedding []float32, limit int, threshold float64) *gorm.DB {
	if limit <= 0 {
		limit = 3
	}
	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("product_embeddings").
		Select("product_embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector)
	if threshold > 0 {
		query = query.Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)
	}
	return query.
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{queryVector}}).
		Limit(limit)
}

func (r *ProductEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredProductEmbedding, error) {
	var results []scoredRow
	if err := r.similarityQuery(ctx, embedding, limit, threshold).Scan(&results).Error; err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredProductEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredProductEmbedding{
			Embedding:  r.mapper.EmbeddingToEntity(&res.ProductEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
