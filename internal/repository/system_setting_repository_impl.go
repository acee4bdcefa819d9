package repository

import (
	"context"

	"medicare-backend/internal/domain/entity"
	domainRepo "medicare-backend/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type systemSettingRepository struct {
	db *gorm.DB
}

func NewSystemSettingRepository(db *gorm.DB) domainRepo.SystemSettingRepository {
	return &systemSettingRepository{db: db}
}

func (r *systemSettingRepository) FindAll(ctx context.Context) ([]entity.SystemSetting, error) {
	var settings []entity.SystemSetting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *systemSettingRepository) Upsert(ctx context.Context, setting *entity.SystemSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "category", "updated_by", "updated_at"}),
		}).
		Create(setting).Error
}
