package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id          uuid.UUID
	Name        string
	Description string
	Price       float64
	Stock       int
	Features    []string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// ProductMetadata travels with an embedding so a search hit can be rendered
// without a second lookup.
type ProductMetadata struct {
	ProductId uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Features  []string  `json:"features"`
}

type ProductEmbedding struct {
	Id        uuid.UUID
	ProductId uuid.UUID
	Content   string
	Embedding []float32
	Metadata  ProductMetadata
	CreatedAt time.Time
	UpdatedAt *time.Time
}
