package catalog

import (
	"context"
	"errors"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/embedding"

	"github.com/google/uuid"
)

type fakeEmbedder struct {
	err      error
	lastTask string
	calls    int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	f.lastTask = taskType
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type fakeEmbeddingRepo struct {
	contract.ProductEmbeddingRepository
	hits      []*contract.ScoredProductEmbedding
	searchErr error
	upserts   []*entity.ProductEmbedding
	deleted   []uuid.UUID
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int, threshold float64) ([]*contract.ScoredProductEmbedding, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if len(r.hits) > limit {
		return r.hits[:limit], nil
	}
	return r.hits, nil
}

func (r *fakeEmbeddingRepo) Upsert(ctx context.Context, e *entity.ProductEmbedding) error {
	r.upserts = append(r.upserts, e)
	return nil
}

func (r *fakeEmbeddingRepo) DeleteByProductId(ctx context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeProductRepo struct {
	contract.ProductRepository
	products []*entity.Product
}

func (r *fakeProductRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			for _, p := range r.products {
				if p.Id == byID.ID {
					return p, nil
				}
			}
			return nil, nil
		}
	}
	return nil, errors.New("unsupported spec")
}

func (r *fakeProductRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	return r.products, nil
}

type fakeUoW struct {
	unitofwork.UnitOfWork
	products   *fakeProductRepo
	embeddings *fakeEmbeddingRepo
}

func (u *fakeUoW) ProductRepository() contract.ProductRepository {
	return u.products
}

func (u *fakeUoW) ProductEmbeddingRepository() contract.ProductEmbeddingRepository {
	return u.embeddings
}

type fakeFactory struct {
	uow *fakeUoW
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newFakeFactory(products []*entity.Product, hits []*contract.ScoredProductEmbedding) *fakeFactory {
	return &fakeFactory{uow: &fakeUoW{
		products:   &fakeProductRepo{products: products},
		embeddings: &fakeEmbeddingRepo{hits: hits},
	}}
}
