package model

import (
	"fmt"

	"gorm.io/gorm"
)

// HNSW parameters for the product embedding index.
const (
	HNSWM              = 16
	HNSWEfConstruction = 64
)

var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS vector;`,
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
}

func productEmbeddingIndexSQL() string {
	return fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS product_embeddings_embedding_hnsw_idx ON product_embeddings USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
		HNSWM, HNSWEfConstruction,
	)
}

// Migrate brings the schema up to date. It is idempotent.
func Migrate(db *gorm.DB) error {
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup %q: %w", sql, err)
		}
	}

	if err := db.AutoMigrate(&Message{}, &Product{}, &ProductEmbedding{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if err := db.Exec(productEmbeddingIndexSQL()).Error; err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}

// Reset empties every table owned by this service, keeping the schema.
func Reset(db *gorm.DB) error {
	return db.Exec(`TRUNCATE TABLE product_embeddings, products, messages RESTART IDENTITY CASCADE;`).Error
}
