package dto

import "github.com/google/uuid"

type ProductSearchRequest struct {
	Query string `query:"q" json:"q" validate:"required"`
	Limit int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=20"`
}

type ProductSearchResult struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Features  []string  `json:"features"`
	Content   string    `json:"content"`
	Score     float64   `json:"score"`
}

type ReindexRequest struct {
	ProductID *uuid.UUID `json:"productId,omitempty"`
}

type ReindexResponse struct {
	Queued    bool       `json:"queued"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
}

// PublishIndexProductMessage is the payload of the catalog index queue.
// A nil ProductID means the whole catalog.
type PublishIndexProductMessage struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}
