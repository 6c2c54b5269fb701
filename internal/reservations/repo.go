package reservations

import (
	"context"
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes reservation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reservation repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountOverlapping counts blocking reservations of a unit intersecting the
// window. Two windows [a,b) and [c,d) overlap iff a < d && c < b. Runs on the
// supplied tx so callers can pin the isolation level.
func (r *Repository) CountOverlapping(tx *gorm.DB, equipmentID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := tx.
		Model(&models.Reservation{}).
		Where("equipment_id = ?", equipmentID).
		Where("status IN ?", enums.BlockingReservationStatuses).
		Where("start_time < ? AND ? < end_time", end, start).
		Count(&count).Error
	return count, err
}

// CreateTx inserts a reservation row on the supplied tx.
func (r *Repository) CreateTx(tx *gorm.DB, row *models.Reservation) error {
	return tx.Create(row).Error
}

// FindByID loads a reservation with its unit and requester.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var row models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Preload("User").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type listQuery struct {
	userID uuid.UUID
	status enums.ReservationStatus
	limit  int
	offset int
}

// List returns reservations newest first, with the total matching count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Reservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})

	if opts.userID != uuid.Nil {
		query = query.Where("user_id = ?", opts.userID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Reservation
	err := query.
		Preload("Equipment").
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

// ListBlockingForWindow returns pending/approved reservations of a unit that
// touch the given window, earliest first.
func (r *Repository) ListBlockingForWindow(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Where("status IN ?", enums.BlockingReservationStatuses).
		Where("start_time < ? AND ? < end_time", end, start).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

// Update persists the full reservation row.
func (r *Repository) Update(ctx context.Context, row *models.Reservation) error {
	return r.db.WithContext(ctx).Save(row).Error
}
