package contract

import (
	"context"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	CreateBulk(ctx context.Context, messages []*entity.Message) error
	DeleteBySessionID(ctx context.Context, sessionID string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
