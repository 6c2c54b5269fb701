package statistics

import (
	"context"
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository runs the aggregate queries behind the statistics endpoints.
// Everything here is read-only.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a statistics repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// usageHoursExpr sums session duration in hours, counting open sessions up
// to now.
const usageHoursExpr = "COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(end_time, NOW()) - start_time)) / 3600), 0)"

// FleetTotals is the headline equipment rollup.
type FleetTotals struct {
	Count      int64
	TotalValue float64
}

func (r *Repository) FleetTotals(ctx context.Context) (*FleetTotals, error) {
	var out FleetTotals
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MaintenanceCountSince counts tickets created at or after the cutoff.
func (r *Repository) MaintenanceCountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Maintenance{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// AverageDailyUsageHours returns the fleet-wide average usage hours per unit
// per day over the trailing window.
func (r *Repository) AverageDailyUsageHours(ctx context.Context, since time.Time, days int) (float64, error) {
	if days <= 0 {
		days = 1
	}
	var hours float64
	err := r.db.WithContext(ctx).
		Model(&models.EquipmentUsage{}).
		Select(usageHoursExpr).
		Where("start_time >= ?", since).
		Scan(&hours).Error
	if err != nil {
		return 0, err
	}

	var units int64
	if err := r.db.WithContext(ctx).Model(&models.Equipment{}).Count(&units).Error; err != nil {
		return 0, err
	}
	if units == 0 {
		return 0, nil
	}
	return hours / float64(units) / float64(days), nil
}

// EquipmentDetailRow is the per-unit usage summary.
type EquipmentDetailRow struct {
	ID                 uuid.UUID
	EquipmentNo        string
	Name               string
	Model              string
	Location           string
	Category           enums.EquipmentCategory
	Status             enums.EquipmentStatus
	CreatedAt          time.Time
	UsageCount         int64
	TotalHours         float64
	FaultCount         int64
	LastMaintenanceAt  *time.Time
}

type DetailFilters struct {
	Search   string
	Category enums.EquipmentCategory
	Location string
	Limit    int
	Offset   int
}

// EquipmentDetails joins per-unit usage and fault aggregates.
func (r *Repository) EquipmentDetails(ctx context.Context, filters DetailFilters) ([]EquipmentDetailRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Equipment{})
	if filters.Search != "" {
		needle := "%" + filters.Search + "%"
		base = base.Where("equipment.equipment_no ILIKE ? OR equipment.name ILIKE ? OR equipment.model ILIKE ?", needle, needle, needle)
	}
	if filters.Category != "" {
		base = base.Where("equipment.category = ?", filters.Category)
	}
	if filters.Location != "" {
		base = base.Where("equipment.location ILIKE ?", "%"+filters.Location+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []EquipmentDetailRow
	err := base.
		Select(`equipment.id, equipment.equipment_no, equipment.name, equipment.model,
			equipment.location, equipment.category, equipment.status, equipment.created_at,
			COALESCE(u.usage_count, 0) AS usage_count,
			COALESCE(u.total_hours, 0) AS total_hours,
			COALESCE(m.fault_count, 0) AS fault_count,
			m.last_maintenance_at`).
		Joins(`LEFT JOIN (
			SELECT equipment_id, COUNT(*) AS usage_count,
				` + usageHoursExpr + ` AS total_hours
			FROM equipment_usages GROUP BY equipment_id
		) u ON u.equipment_id = equipment.id`).
		Joins(`LEFT JOIN (
			SELECT equipment_id, COUNT(*) AS fault_count,
				MAX(actual_completion) AS last_maintenance_at
			FROM maintenances GROUP BY equipment_id
		) m ON m.equipment_id = equipment.id`).
		Order("equipment.equipment_no ASC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DepartmentRow aggregates activity per user department.
type DepartmentRow struct {
	Department     string
	UserCount      int64
	UsageCount     int64
	EquipmentCount int64
}

func (r *Repository) Departments(ctx context.Context) ([]DepartmentRow, error) {
	var rows []DepartmentRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(NULLIF(users.department, ''), 'unknown') AS department,
			COUNT(DISTINCT users.id) AS user_count,
			COUNT(u.id) AS usage_count,
			COUNT(DISTINCT u.equipment_id) AS equipment_count
		FROM users
		LEFT JOIN equipment_usages u ON u.user_id = users.id
		GROUP BY 1
		ORDER BY user_count DESC`).
		Scan(&rows).Error
	return rows, err
}

// Distribution is one labelled bucket of a grouped count.
type Distribution struct {
	Label string
	Count int64
}

func (r *Repository) EquipmentStatusDistribution(ctx context.Context) ([]Distribution, error) {
	return r.grouped(ctx, &models.Equipment{}, "status")
}

func (r *Repository) EquipmentCategoryDistribution(ctx context.Context) ([]Distribution, error) {
	return r.grouped(ctx, &models.Equipment{}, "category")
}

func (r *Repository) ReservationStatusDistribution(ctx context.Context) ([]Distribution, error) {
	return r.grouped(ctx, &models.Reservation{}, "status")
}

func (r *Repository) MaintenanceStatusDistribution(ctx context.Context) ([]Distribution, error) {
	return r.grouped(ctx, &models.Maintenance{}, "status")
}

func (r *Repository) MaintenancePriorityDistribution(ctx context.Context) ([]Distribution, error) {
	return r.grouped(ctx, &models.Maintenance{}, "priority")
}

func (r *Repository) grouped(ctx context.Context, model any, column string) ([]Distribution, error) {
	var rows []Distribution
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// FaultsByCategory counts tickets grouped by the failing unit's category.
func (r *Repository) FaultsByCategory(ctx context.Context) ([]Distribution, error) {
	var rows []Distribution
	err := r.db.WithContext(ctx).Raw(`
		SELECT equipment.category AS label, COUNT(*) AS count
		FROM maintenances
		JOIN equipment ON equipment.id = maintenances.equipment_id
		GROUP BY equipment.category
		ORDER BY count DESC`).
		Scan(&rows).Error
	return rows, err
}

// ReservationCountBetween counts reservations created within [from, to).
func (r *Repository) ReservationCountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// UtilizationRow is per-unit usage hours over a trailing window.
type UtilizationRow struct {
	ID          uuid.UUID
	EquipmentNo string
	Name        string
	UsageHours  float64
}

func (r *Repository) UtilizationSince(ctx context.Context, since time.Time) ([]UtilizationRow, error) {
	var rows []UtilizationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT equipment.id, equipment.equipment_no, equipment.name,
			COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(u.end_time, NOW()) - GREATEST(u.start_time, ?))) / 3600), 0) AS usage_hours
		FROM equipment
		LEFT JOIN equipment_usages u
			ON u.equipment_id = equipment.id AND COALESCE(u.end_time, NOW()) > ?
		GROUP BY equipment.id, equipment.equipment_no, equipment.name
		ORDER BY usage_hours DESC`, since, since).
		Scan(&rows).Error
	return rows, err
}

// TrendBucket is activity volume at one point of a time series.
type TrendBucket struct {
	Bucket       string
	Usages       int64
	Reservations int64
	Tickets      int64
}

// Trends buckets usage, reservation, and ticket counts since the cutoff.
// bucketFormat is a to_char pattern such as YYYY-MM-DD or YYYY-MM.
func (r *Repository) Trends(ctx context.Context, since time.Time, bucketFormat string) ([]TrendBucket, error) {
	var rows []TrendBucket
	err := r.db.WithContext(ctx).Raw(`
		WITH buckets AS (
			SELECT to_char(created_at, ?) AS bucket, 'usage' AS kind FROM equipment_usages WHERE created_at >= ?
			UNION ALL
			SELECT to_char(created_at, ?), 'reservation' FROM reservations WHERE created_at >= ?
			UNION ALL
			SELECT to_char(created_at, ?), 'maintenance' FROM maintenances WHERE created_at >= ?
		)
		SELECT bucket,
			COUNT(*) FILTER (WHERE kind = 'usage') AS usages,
			COUNT(*) FILTER (WHERE kind = 'reservation') AS reservations,
			COUNT(*) FILTER (WHERE kind = 'maintenance') AS tickets
		FROM buckets
		GROUP BY bucket
		ORDER BY bucket ASC`,
		bucketFormat, since, bucketFormat, since, bucketFormat, since).
		Scan(&rows).Error
	return rows, err
}

// PopularityRow ranks a unit by how often it is used.
type PopularityRow struct {
	ID           uuid.UUID
	EquipmentNo  string
	Name         string
	UsageCount   int64
	AverageHours float64
}

func (r *Repository) PopularEquipment(ctx context.Context, limit int) ([]PopularityRow, error) {
	var rows []PopularityRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT equipment.id, equipment.equipment_no, equipment.name,
			COUNT(u.id) AS usage_count,
			COALESCE(AVG(EXTRACT(EPOCH FROM (COALESCE(u.end_time, NOW()) - u.start_time)) / 3600), 0) AS average_hours
		FROM equipment
		JOIN equipment_usages u ON u.equipment_id = equipment.id
		GROUP BY equipment.id, equipment.equipment_no, equipment.name
		ORDER BY usage_count DESC
		LIMIT ?`, limit).
		Scan(&rows).Error
	return rows, err
}

// RoleActivityRow is usage activity per user role.
type RoleActivityRow struct {
	Role        enums.Role
	ActiveUsers int64
	UsageCount  int64
}

func (r *Repository) UserActivitySince(ctx context.Context, since time.Time) ([]RoleActivityRow, error) {
	var rows []RoleActivityRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT users.role, COUNT(DISTINCT u.user_id) AS active_users, COUNT(u.id) AS usage_count
		FROM users
		LEFT JOIN equipment_usages u ON u.user_id = users.id AND u.start_time >= ?
		GROUP BY users.role`, since).
		Scan(&rows).Error
	return rows, err
}

// UnassignedMaintenanceCount counts open, unassigned tickets.
func (r *Repository) UnassignedMaintenanceCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Maintenance{}).
		Where("status = ?", enums.MaintenanceStatusUnassigned).
		Count(&count).Error
	return count, err
}

// RecentUsages returns the latest usage sessions with unit and user preloaded.
func (r *Repository) RecentUsages(ctx context.Context, limit int) ([]models.EquipmentUsage, error) {
	var rows []models.EquipmentUsage
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Preload("User").
		Order("start_time DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
