package repository

import (
	"context"

	"medicare-backend/internal/domain/entity"
)

// AuditLogFilter narrows audit trail listings
type AuditLogFilter struct {
	Action string
	Search string
	Page   int
	Limit  int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, filter AuditLogFilter) ([]entity.AuditLog, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.AuditLog, error)
}
