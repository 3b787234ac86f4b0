package service

import (
	"context"
	"encoding/json"
	"fmt"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/pkg/catalog"
)

type ICatalogService interface {
	Search(ctx context.Context, req *dto.ProductSearchRequest) ([]dto.ProductSearchResult, error)
	RequestReindex(ctx context.Context, req *dto.ReindexRequest) (*dto.ReindexResponse, error)
}

type catalogService struct {
	searcher         catalog.Searcher
	publisherService IPublisherService
	logger           logger.ILogger
}

// NewCatalogService serves staff-facing catalog lookups. Unlike the chat
// path, search errors are returned to the caller.
func NewCatalogService(searcher catalog.Searcher, publisherService IPublisherService, log logger.ILogger) ICatalogService {
	return &catalogService{
		searcher:         searcher,
		publisherService: publisherService,
		logger:           log,
	}
}

func (c *catalogService) Search(ctx context.Context, req *dto.ProductSearchRequest) ([]dto.ProductSearchResult, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = catalog.DefaultLimit
	}

	docs, err := c.searcher.Search(ctx, req.Query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]dto.ProductSearchResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, dto.ProductSearchResult{
			ProductID: d.Metadata.ProductId,
			Name:      d.Metadata.Name,
			Price:     d.Metadata.Price,
			Features:  d.Metadata.Features,
			Content:   d.Content,
			Score:     d.Score,
		})
	}
	return results, nil
}

func (c *catalogService) RequestReindex(ctx context.Context, req *dto.ReindexRequest) (*dto.ReindexResponse, error) {
	payload, err := json.Marshal(dto.PublishIndexProductMessage{ProductID: req.ProductID})
	if err != nil {
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue reindex: %w", err)
	}

	scope := "all"
	if req.ProductID != nil {
		scope = req.ProductID.String()
	}
	c.logger.Info("CATALOG", "Reindex queued", map[string]interface{}{"scope": scope})

	return &dto.ReindexResponse{Queued: true, ProductID: req.ProductID}, nil
}
