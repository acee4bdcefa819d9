package repository

import (
	"context"

	"medicare-backend/internal/domain/entity"
)

type SystemSettingRepository interface {
	// FindAll returns every setting, ordered by key.
	FindAll(ctx context.Context) ([]entity.SystemSetting, error)
	// Upsert inserts the setting or, when the key exists, overwrites its
	// value, description, category and updater.
	Upsert(ctx context.Context, setting *entity.SystemSetting) error
}
