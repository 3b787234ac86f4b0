package catalog

import (
	"context"
	"errors"
	"fmt"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/embedding"
)

var ErrRetrieval = errors.New("product retrieval failed")

// Searcher returns at most limit products ordered by descending relevance.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]ProductDocument, error)
}

// VectorSearcher embeds the query and ranks product_embeddings by cosine similarity.
type VectorSearcher struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	threshold  float64
}

func NewVectorSearcher(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, threshold float64) *VectorSearcher {
	return &VectorSearcher{
		embedder:   embedder,
		uowFactory: uowFactory,
		threshold:  threshold,
	}
}

func (s *VectorSearcher) Search(ctx context.Context, query string, limit int) ([]ProductDocument, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	res, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ProductEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, limit, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", ErrRetrieval, err)
	}

	docs := make([]ProductDocument, 0, len(scored))
	for _, hit := range scored {
		docs = append(docs, ProductDocument{
			Content:  hit.Embedding.Content,
			Metadata: hit.Embedding.Metadata,
			Score:    hit.Similarity,
		})
	}
	return docs, nil
}

// FailClosed never lets a retrieval problem reach the caller: any error or
// timeout becomes an empty result and a log line.
type FailClosed struct {
	next   Searcher
	logger logger.ILogger
}

func NewFailClosed(next Searcher, log logger.ILogger) *FailClosed {
	return &FailClosed{next: next, logger: log}
}

func (f *FailClosed) Search(ctx context.Context, query string, limit int) ([]ProductDocument, error) {
	docs, err := f.next.Search(ctx, query, limit)
	if err != nil {
		f.logger.Warn("CATALOG", "Product search failed, continuing without context", map[string]interface{}{
			"error": err.Error(),
			"query": query,
		})
		return []ProductDocument{}, nil
	}
	if len(docs) > limit && limit > 0 {
		docs = docs[:limit]
	}
	return docs, nil
}
