package repository

import (
	"context"

	"gorm.io/gorm"

	"genrelab/internal/model"
)

// ActivityLogRepository appends audit entries. Entries are never updated.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create appends an audit entry.
func (r *activityLogRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
