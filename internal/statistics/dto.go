package statistics

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
)

// OverviewResult is the headline dashboard summary.
type OverviewResult struct {
	TotalEquipment     int64   `json:"total_equipment"`
	TotalValue         float64 `json:"total_value"`
	MaintenanceMonth   int64   `json:"maintenance_this_month"`
	AverageUtilization float64 `json:"average_utilization_percent"`
	WindowDays         int     `json:"window_days"`
}

// EquipmentDetail is one unit's usage summary row.
type EquipmentDetail struct {
	ID                uuid.UUID               `json:"id"`
	EquipmentNo       string                  `json:"equipment_no"`
	Name              string                  `json:"name"`
	Model             string                  `json:"model"`
	Location          string                  `json:"location"`
	Category          enums.EquipmentCategory `json:"category"`
	Status            enums.EquipmentStatus   `json:"status"`
	UsageCount        int64                   `json:"usage_count"`
	TotalHours        float64                 `json:"total_hours"`
	FaultCount        int64                   `json:"fault_count"`
	LastMaintenanceAt *time.Time              `json:"last_maintenance_at,omitempty"`
	UtilizationPct    float64                 `json:"utilization_percent"`
	DailyUsageHours   float64                 `json:"daily_usage_hours"`
	IdleRatePct       float64                 `json:"idle_rate_percent"`
}

// DetailsParams filters the per-equipment detail listing.
type DetailsParams struct {
	Search     string
	Category   string
	Location   string
	Pagination pkgpagination.Params
}

// DetailsResult is one page of per-equipment detail rows.
type DetailsResult struct {
	Equipment  []EquipmentDetail  `json:"equipment"`
	Pagination pkgpagination.Meta `json:"pagination"`
}

// DepartmentStat aggregates activity for one department.
type DepartmentStat struct {
	Department     string `json:"department"`
	UserCount      int64  `json:"user_count"`
	UsageCount     int64  `json:"usage_count"`
	EquipmentCount int64  `json:"equipment_count"`
}

// Bucket is one labelled count of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// EquipmentStatsResult breaks the fleet down by status and category.
type EquipmentStatsResult struct {
	ByStatus      []Bucket `json:"by_status"`
	ByCategory    []Bucket `json:"by_category"`
	Running       int64    `json:"running"`
	UnderRepair   int64    `json:"under_repair"`
	PendingClean  int64    `json:"pending_cleaning"`
	Archived      int64    `json:"archived"`
	Total         int64    `json:"total"`
}

// ReservationStatsResult summarizes reservation volume.
type ReservationStatsResult struct {
	Today     int64    `json:"today"`
	ThisWeek  int64    `json:"this_week"`
	ThisMonth int64    `json:"this_month"`
	ByStatus  []Bucket `json:"by_status"`
}

// MaintenanceStatsResult summarizes ticket volume and composition.
type MaintenanceStatsResult struct {
	ThisMonth  int64    `json:"this_month"`
	ByStatus   []Bucket `json:"by_status"`
	ByPriority []Bucket `json:"by_priority"`
	ByCategory []Bucket `json:"faults_by_category"`
}

// UtilizationEntry is one unit's trailing-window utilization.
type UtilizationEntry struct {
	ID             uuid.UUID `json:"id"`
	EquipmentNo    string    `json:"equipment_no"`
	Name           string    `json:"name"`
	UsageHours     float64   `json:"usage_hours"`
	UtilizationPct float64   `json:"utilization_percent"`
}

// UtilizationResult ranks units by trailing-window utilization.
type UtilizationResult struct {
	WindowDays int                `json:"window_days"`
	Equipment  []UtilizationEntry `json:"equipment"`
}

// TrendPoint is activity volume at one point of the series.
type TrendPoint struct {
	Bucket       string `json:"bucket"`
	Usages       int64  `json:"usages"`
	Reservations int64  `json:"reservations"`
	Maintenance  int64  `json:"maintenance"`
}

// TrendsResult is the bucketed activity series.
type TrendsResult struct {
	Period string       `json:"period"`
	Points []TrendPoint `json:"points"`
}

// PopularEntry is one unit ranked by usage volume.
type PopularEntry struct {
	ID           uuid.UUID `json:"id"`
	EquipmentNo  string    `json:"equipment_no"`
	Name         string    `json:"name"`
	UsageCount   int64     `json:"usage_count"`
	AverageHours float64   `json:"average_hours"`
}

// UserActivityEntry is usage activity for one role.
type UserActivityEntry struct {
	Role        enums.Role `json:"role"`
	ActiveUsers int64      `json:"active_users"`
	UsageCount  int64      `json:"usage_count"`
}

// UserActivityResult summarizes trailing-window activity per role.
type UserActivityResult struct {
	WindowDays int                 `json:"window_days"`
	Roles      []UserActivityEntry `json:"roles"`
}

// DashboardUsage is one recent usage session on the dashboard.
type DashboardUsage struct {
	ID            uuid.UUID  `json:"id"`
	EquipmentNo   string     `json:"equipment_no,omitempty"`
	EquipmentName string     `json:"equipment_name,omitempty"`
	UserName      string     `json:"user_name,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

// DashboardResult is the combined landing page payload.
type DashboardResult struct {
	EquipmentByStatus     []Bucket         `json:"equipment_by_status"`
	ReservationsToday     int64            `json:"reservations_today"`
	UnassignedMaintenance int64            `json:"unassigned_maintenance"`
	RecentUsages          []DashboardUsage `json:"recent_usages"`
}
