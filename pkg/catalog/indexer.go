package catalog

import (
	"context"
	"fmt"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/embedding"

	"github.com/google/uuid"
)

// Indexer keeps product_embeddings in step with the products table.
type Indexer struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewIndexer(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Indexer {
	return &Indexer{
		embedder:   embedder,
		uowFactory: uowFactory,
		logger:     log,
	}
}

// IndexProduct (re)embeds one product. A product that no longer exists has
// its embedding removed.
func (ix *Indexer) IndexProduct(ctx context.Context, productID uuid.UUID) error {
	uow := ix.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: productID})
	if err != nil {
		return fmt.Errorf("load product %s: %w", productID, err)
	}
	if product == nil {
		ix.logger.Info("INDEXER", "Product gone, dropping embedding", map[string]interface{}{"product_id": productID})
		return uow.ProductEmbeddingRepository().DeleteByProductId(ctx, productID)
	}

	return ix.index(ctx, uow, product)
}

// IndexAll embeds every product and returns how many were written.
func (ix *Indexer) IndexAll(ctx context.Context) (int, error) {
	uow := ix.uowFactory.NewUnitOfWork(ctx)

	products, err := uow.ProductRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	count := 0
	for _, p := range products {
		if err := ix.index(ctx, uow, p); err != nil {
			return count, err
		}
		count++
	}

	ix.logger.Info("INDEXER", "Catalog indexed", map[string]interface{}{"count": count})
	return count, nil
}

func (ix *Indexer) index(ctx context.Context, uow unitofwork.UnitOfWork, p *entity.Product) error {
	content := DocumentContent(p)

	res, err := ix.embedder.Generate(ctx, content, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("embed product %s: %w", p.Id, err)
	}

	record := &entity.ProductEmbedding{
		ProductId: p.Id,
		Content:   content,
		Embedding: res.Embedding.Values,
		Metadata:  DocumentMetadata(p),
		CreatedAt: time.Now(),
	}
	if err := uow.ProductEmbeddingRepository().Upsert(ctx, record); err != nil {
		return fmt.Errorf("store embedding for %s: %w", p.Id, err)
	}

	ix.logger.Debug("INDEXER", "Product embedded", map[string]interface{}{
		"product_id": p.Id,
		"dimensions": len(res.Embedding.Values),
	})
	return nil
}
