package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProductID struct {
	ProductID uuid.UUID
}

func (s ByProductID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id = ?", s.ProductID)
}

// ByNameLike matches product names case-insensitively.
type ByNameLike struct {
	Name string
}

func (s ByNameLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Name+"%")
}

type InStock struct{}

func (s InStock) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stock > 0")
}
