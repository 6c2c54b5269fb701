package equipment

import (
	"context"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes equipment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an equipment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new equipment row.
func (r *Repository) Create(ctx context.Context, row *models.Equipment) (*models.Equipment, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID loads a unit by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var row models.Equipment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// EquipmentNoTaken reports whether the asset number already exists.
func (r *Repository) EquipmentNoTaken(ctx context.Context, equipmentNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("equipment_no = ?", equipmentNo).
		Count(&count).Error
	return count > 0, err
}

type listQuery struct {
	equipmentNo string
	search      string
	status      enums.EquipmentStatus
	category    enums.EquipmentCategory
	location    string
	limit       int
	offset      int
}

// List returns units newest first, with the total matching count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Equipment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Equipment{})

	if opts.equipmentNo != "" {
		query = query.Where("equipment_no = ?", opts.equipmentNo)
	}
	if opts.search != "" {
		needle := "%" + opts.search + "%"
		query = query.Where("equipment_no ILIKE ? OR name ILIKE ? OR model ILIKE ?", needle, needle, needle)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.category != "" {
		query = query.Where("category = ?", opts.category)
	}
	if opts.location != "" {
		query = query.Where("location ILIKE ?", "%"+opts.location+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Equipment
	err := query.
		Order("created_at DESC").
		Limit(opts.limit).
		Offset(opts.offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every unit ordered by asset number, for export.
func (r *Repository) ListAll(ctx context.Context) ([]models.Equipment, error) {
	var rows []models.Equipment
	err := r.db.WithContext(ctx).
		Order("equipment_no ASC").
		Find(&rows).Error
	return rows, err
}

// Update persists the full equipment row.
func (r *Repository) Update(ctx context.Context, row *models.Equipment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// Delete removes the equipment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id).Error
}
