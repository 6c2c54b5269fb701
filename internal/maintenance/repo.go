package maintenance

import (
	"context"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes maintenance ticket persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a maintenance repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new ticket row.
func (r *Repository) Create(ctx context.Context, row *models.Maintenance) (*models.Maintenance, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID loads a ticket with its unit, reporter, and maintainer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	var row models.Maintenance
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Preload("Reporter").
		Preload("Maintainer").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type listQuery struct {
	reporterID    uuid.UUID
	status        enums.MaintenanceStatus
	priority      enums.Priority
	urgency       enums.Priority
	faultType     enums.FaultType
	ticketNo      string
	equipmentName string
	limit         int
	offset        int
}

// List returns tickets newest first, with the total matching count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Maintenance, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Maintenance{})

	if opts.reporterID != uuid.Nil {
		query = query.Where("maintenances.reporter_id = ?", opts.reporterID)
	}
	if opts.status != "" {
		query = query.Where("maintenances.status = ?", opts.status)
	}
	if opts.priority != "" {
		query = query.Where("maintenances.priority = ?", opts.priority)
	}
	if opts.urgency != "" {
		query = query.Where("maintenances.urgency = ?", opts.urgency)
	}
	if opts.faultType != "" {
		query = query.Where("maintenances.fault_type = ?", opts.faultType)
	}
	if opts.ticketNo != "" {
		query = query.Where("maintenances.ticket_no ILIKE ?", "%"+opts.ticketNo+"%")
	}
	if opts.equipmentName != "" {
		query = query.
			Joins("JOIN equipment ON equipment.id = maintenances.equipment_id").
			Where("equipment.name ILIKE ?", "%"+opts.equipmentName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Maintenance
	err := query.
		Preload("Equipment").
		Preload("Reporter").
		Preload("Maintainer").
		Order("maintenances.created_at DESC").
		Limit(opts.limit).
		Offset(opts.offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists the full ticket row.
func (r *Repository) Update(ctx context.Context, row *models.Maintenance) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// StatusCounts tallies tickets by status.
type StatusCounts struct {
	Unassigned int64
	InRepair   int64
	Completed  int64
	Total      int64
}

// CountByStatus returns the public ticket counters.
func (r *Repository) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	type bucket struct {
		Status enums.MaintenanceStatus
		N      int64
	}
	var buckets []bucket
	err := r.db.WithContext(ctx).
		Model(&models.Maintenance{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	counts := &StatusCounts{}
	for _, b := range buckets {
		counts.Total += b.N
		switch b.Status {
		case enums.MaintenanceStatusUnassigned:
			counts.Unassigned += b.N
		case enums.MaintenanceStatusInRepair, enums.MaintenanceStatusPendingAcceptance:
			counts.InRepair += b.N
		case enums.MaintenanceStatusCompleted, enums.MaintenanceStatusClosed:
			counts.Completed += b.N
		}
	}
	return counts, nil
}
