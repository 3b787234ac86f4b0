package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string                      `gorm:"type:varchar(255);not null"`
	Description string                      `gorm:"type:text"`
	Price       float64                     `gorm:"type:numeric(10,2);not null"`
	Stock       int                         `gorm:"not null;default:0"`
	Features    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt              `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}
