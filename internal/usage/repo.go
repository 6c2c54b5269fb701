package usage

import (
	"context"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes equipment usage persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a usage repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new usage row.
func (r *Repository) Create(ctx context.Context, row *models.EquipmentUsage) (*models.EquipmentUsage, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID loads a usage row by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.EquipmentUsage, error) {
	var row models.EquipmentUsage
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ActiveForEquipment returns the open usage record for a unit, if any.
func (r *Repository) ActiveForEquipment(ctx context.Context, equipmentID uuid.UUID) (*models.EquipmentUsage, error) {
	var row models.EquipmentUsage
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("equipment_id = ? AND status = ?", equipmentID, enums.UsageStatusInUse).
		Order("start_time DESC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// RecentForEquipment returns the latest usage rows for a unit.
func (r *Repository) RecentForEquipment(ctx context.Context, equipmentID uuid.UUID, limit int) ([]models.EquipmentUsage, error) {
	var rows []models.EquipmentUsage
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("equipment_id = ?", equipmentID).
		Order("start_time DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UsageTotals aggregates count and hours for a unit. Open records count up
// to now.
type UsageTotals struct {
	Count int64   `json:"count"`
	Hours float64 `json:"hours"`
}

// TotalsForEquipment sums usage count and hours for a unit.
func (r *Repository) TotalsForEquipment(ctx context.Context, equipmentID uuid.UUID) (*UsageTotals, error) {
	var totals UsageTotals
	err := r.db.WithContext(ctx).
		Model(&models.EquipmentUsage{}).
		Select("COUNT(*) AS count, COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(end_time, NOW()) - start_time)) / 3600), 0) AS hours").
		Where("equipment_id = ?", equipmentID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// HasAnyForEquipment reports whether the unit has ever been used.
func (r *Repository) HasAnyForEquipment(ctx context.Context, equipmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EquipmentUsage{}).
		Where("equipment_id = ?", equipmentID).
		Count(&count).Error
	return count > 0, err
}

// Update persists the full usage row.
func (r *Repository) Update(ctx context.Context, row *models.EquipmentUsage) error {
	return r.db.WithContext(ctx).Save(row).Error
}
