package audit

import (
	"context"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes system log persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a system log repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a log row.
func (r *Repository) Create(ctx context.Context, row *models.SystemLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

type listQuery struct {
	action string
	module string
	userID string
	limit  int
	offset int
}

// List returns log rows newest first, with the total matching count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.SystemLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SystemLog{})

	if opts.action != "" {
		query = query.Where("action = ?", opts.action)
	}
	if opts.module != "" {
		query = query.Where("module = ?", opts.module)
	}
	if opts.userID != "" {
		query = query.Where("user_id = ?", opts.userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SystemLog
	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(opts.limit).
		Offset(opts.offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
