// Package catalog turns products into searchable documents and finds the ones
// closest to a shopper's question.
package catalog

import (
	"fmt"
	"strings"

	"customer-service-be/internal/entity"
)

const DefaultLimit = 3

// ProductDocument is one similarity search hit.
type ProductDocument struct {
	Content  string                 `json:"content"`
	Metadata entity.ProductMetadata `json:"metadata"`
	Score    float64                `json:"score"`
}

// DocumentContent renders the text that gets embedded for a product.
func DocumentContent(p *entity.Product) string {
	return fmt.Sprintf("Name: %s\nDescription: %s\nPrice: %.2f\nFeatures: %s",
		p.Name,
		p.Description,
		p.Price,
		strings.Join(p.Features, ", "),
	)
}

func DocumentMetadata(p *entity.Product) entity.ProductMetadata {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return entity.ProductMetadata{
		ProductId: p.Id,
		Name:      p.Name,
		Price:     p.Price,
		Features:  features,
	}
}

// FormatDocuments joins hit contents with a blank line between products.
func FormatDocuments(docs []ProductDocument) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
