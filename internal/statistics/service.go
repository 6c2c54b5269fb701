package statistics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
)

const (
	defaultPopularLimit   = 10
	dashboardRecentUsages = 5
	fullDayHours          = 24
)

type statsRepository interface {
	FleetTotals(ctx context.Context) (*FleetTotals, error)
	MaintenanceCountSince(ctx context.Context, since time.Time) (int64, error)
	AverageDailyUsageHours(ctx context.Context, since time.Time, days int) (float64, error)
	EquipmentDetails(ctx context.Context, filters DetailFilters) ([]EquipmentDetailRow, int64, error)
	Departments(ctx context.Context) ([]DepartmentRow, error)
	EquipmentStatusDistribution(ctx context.Context) ([]Distribution, error)
	EquipmentCategoryDistribution(ctx context.Context) ([]Distribution, error)
	ReservationStatusDistribution(ctx context.Context) ([]Distribution, error)
	MaintenanceStatusDistribution(ctx context.Context) ([]Distribution, error)
	MaintenancePriorityDistribution(ctx context.Context) ([]Distribution, error)
	FaultsByCategory(ctx context.Context) ([]Distribution, error)
	ReservationCountBetween(ctx context.Context, from, to time.Time) (int64, error)
	UtilizationSince(ctx context.Context, since time.Time) ([]UtilizationRow, error)
	Trends(ctx context.Context, since time.Time, bucketFormat string) ([]TrendBucket, error)
	PopularEquipment(ctx context.Context, limit int) ([]PopularityRow, error)
	UserActivitySince(ctx context.Context, since time.Time) ([]RoleActivityRow, error)
	UnassignedMaintenanceCount(ctx context.Context) (int64, error)
	RecentUsages(ctx context.Context, limit int) ([]models.EquipmentUsage, error)
}

// Service exposes the statistics endpoints.
type Service interface {
	Overview(ctx context.Context) (*OverviewResult, error)
	EquipmentDetails(ctx context.Context, params DetailsParams) (*DetailsResult, error)
	Departments(ctx context.Context) ([]DepartmentStat, error)
	Equipment(ctx context.Context) (*EquipmentStatsResult, error)
	Reservations(ctx context.Context) (*ReservationStatsResult, error)
	Maintenance(ctx context.Context) (*MaintenanceStatsResult, error)
	Utilization(ctx context.Context, windowDays int) (*UtilizationResult, error)
	Trends(ctx context.Context, period string) (*TrendsResult, error)
	PopularEquipment(ctx context.Context, limit int) ([]PopularEntry, error)
	UserActivity(ctx context.Context, windowDays int) (*UserActivityResult, error)
	Dashboard(ctx context.Context) (*DashboardResult, error)
}

type service struct {
	repo statsRepository
	cfg  config.StatisticsConfig
}

// NewService builds the statistics service.
func NewService(repo statsRepository, cfg config.StatisticsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("statistics repository required")
	}
	if cfg.DailyUsableHours <= 0 {
		cfg.DailyUsableHours = 8
	}
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = 30
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) Overview(ctx context.Context) (*OverviewResult, error) {
	fleet, err := s.repo.FleetTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fleet totals")
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	maintenanceMonth, err := s.repo.MaintenanceCountSince(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "maintenance month count")
	}

	windowDays := s.cfg.DefaultWindowDays
	avgDaily, err := s.repo.AverageDailyUsageHours(ctx, now.AddDate(0, 0, -windowDays), windowDays)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "average usage hours")
	}

	return &OverviewResult{
		TotalEquipment:     fleet.Count,
		TotalValue:         round2(fleet.TotalValue),
		MaintenanceMonth:   maintenanceMonth,
		AverageUtilization: utilizationPct(avgDaily, float64(s.cfg.DailyUsableHours)),
		WindowDays:         windowDays,
	}, nil
}

func (s *service) EquipmentDetails(ctx context.Context, params DetailsParams) (*DetailsResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	filters := DetailFilters{
		Search:   strings.TrimSpace(params.Search),
		Location: strings.TrimSpace(params.Location),
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}
	if params.Category != "" {
		category := enums.EquipmentCategory(params.Category)
		if !category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
		}
		filters.Category = category
	}

	rows, total, err := s.repo.EquipmentDetails(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "equipment details")
	}

	now := time.Now().UTC()
	out := make([]EquipmentDetail, 0, len(rows))
	for _, row := range rows {
		ageDays := math.Max(now.Sub(row.CreatedAt).Hours()/fullDayHours, 1)
		dailyHours := row.TotalHours / ageDays
		util := utilizationPct(dailyHours, float64(s.cfg.DailyUsableHours))

		out = append(out, EquipmentDetail{
			ID:                row.ID,
			EquipmentNo:       row.EquipmentNo,
			Name:              row.Name,
			Model:             row.Model,
			Location:          row.Location,
			Category:          row.Category,
			Status:            row.Status,
			UsageCount:        row.UsageCount,
			TotalHours:        round2(row.TotalHours),
			FaultCount:        row.FaultCount,
			LastMaintenanceAt: row.LastMaintenanceAt,
			UtilizationPct:    util,
			DailyUsageHours:   round2(dailyHours),
			IdleRatePct:       round2(100 - util),
		})
	}

	return &DetailsResult{
		Equipment:  out,
		Pagination: pkgpagination.MetaFor(page, total),
	}, nil
}

func (s *service) Departments(ctx context.Context) ([]DepartmentStat, error) {
	rows, err := s.repo.Departments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "department stats")
	}
	out := make([]DepartmentStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, DepartmentStat{
			Department:     row.Department,
			UserCount:      row.UserCount,
			UsageCount:     row.UsageCount,
			EquipmentCount: row.EquipmentCount,
		})
	}
	return out, nil
}

func (s *service) Equipment(ctx context.Context) (*EquipmentStatsResult, error) {
	byStatus, err := s.repo.EquipmentStatusDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "equipment status distribution")
	}
	byCategory, err := s.repo.EquipmentCategoryDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "equipment category distribution")
	}

	result := &EquipmentStatsResult{
		ByStatus:   toBuckets(byStatus),
		ByCategory: toBuckets(byCategory),
	}
	for _, d := range byStatus {
		result.Total += d.Count
		switch enums.EquipmentStatus(d.Label) {
		case enums.EquipmentStatusRunning:
			result.Running = d.Count
		case enums.EquipmentStatusUnderRepair:
			result.UnderRepair = d.Count
		case enums.EquipmentStatusPendingCleaning:
			result.PendingClean = d.Count
		case enums.EquipmentStatusArchived:
			result.Archived = d.Count
		}
	}
	return result, nil
}

func (s *service) Reservations(ctx context.Context) (*ReservationStatsResult, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	tomorrow := dayStart.AddDate(0, 0, 1)

	today, err := s.repo.ReservationCountBetween(ctx, dayStart, tomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservations today")
	}
	week, err := s.repo.ReservationCountBetween(ctx, weekStart, tomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservations this week")
	}
	month, err := s.repo.ReservationCountBetween(ctx, monthStart, tomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservations this month")
	}
	byStatus, err := s.repo.ReservationStatusDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservation status distribution")
	}

	return &ReservationStatsResult{
		Today:     today,
		ThisWeek:  week,
		ThisMonth: month,
		ByStatus:  toBuckets(byStatus),
	}, nil
}

func (s *service) Maintenance(ctx context.Context) (*MaintenanceStatsResult, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	month, err := s.repo.MaintenanceCountSince(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "maintenance month count")
	}
	byStatus, err := s.repo.MaintenanceStatusDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "maintenance status distribution")
	}
	byPriority, err := s.repo.MaintenancePriorityDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "maintenance priority distribution")
	}
	byCategory, err := s.repo.FaultsByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "faults by category")
	}

	return &MaintenanceStatsResult{
		ThisMonth:  month,
		ByStatus:   toBuckets(byStatus),
		ByPriority: toBuckets(byPriority),
		ByCategory: toBuckets(byCategory),
	}, nil
}

func (s *service) Utilization(ctx context.Context, windowDays int) (*UtilizationResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.DefaultWindowDays
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	rows, err := s.repo.UtilizationSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "utilization")
	}

	// The fleet-wide ranking measures against the full clock, not the
	// working day, so an always-on unit reads as 100%.
	capacity := float64(windowDays * fullDayHours)
	out := make([]UtilizationEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, UtilizationEntry{
			ID:             row.ID,
			EquipmentNo:    row.EquipmentNo,
			Name:           row.Name,
			UsageHours:     round2(row.UsageHours),
			UtilizationPct: utilizationPct(row.UsageHours, capacity),
		})
	}
	return &UtilizationResult{WindowDays: windowDays, Equipment: out}, nil
}

func (s *service) Trends(ctx context.Context, period string) (*TrendsResult, error) {
	now := time.Now().UTC()
	var since time.Time
	var format string

	switch period {
	case "", "week":
		period = "week"
		since = now.AddDate(0, 0, -7)
		format = "YYYY-MM-DD"
	case "month":
		since = now.AddDate(0, -1, 0)
		format = "YYYY-MM-DD"
	case "year":
		since = now.AddDate(-1, 0, 0)
		format = "YYYY-MM"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period must be week, month, or year")
	}

	rows, err := s.repo.Trends(ctx, since, format)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "trends")
	}

	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Bucket:       row.Bucket,
			Usages:       row.Usages,
			Reservations: row.Reservations,
			Maintenance:  row.Tickets,
		})
	}
	return &TrendsResult{Period: period, Points: points}, nil
}

func (s *service) PopularEquipment(ctx context.Context, limit int) ([]PopularEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultPopularLimit
	}

	rows, err := s.repo.PopularEquipment(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "popular equipment")
	}

	out := make([]PopularEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, PopularEntry{
			ID:           row.ID,
			EquipmentNo:  row.EquipmentNo,
			Name:         row.Name,
			UsageCount:   row.UsageCount,
			AverageHours: round2(row.AverageHours),
		})
	}
	return out, nil
}

func (s *service) UserActivity(ctx context.Context, windowDays int) (*UserActivityResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.DefaultWindowDays
	}

	rows, err := s.repo.UserActivitySince(ctx, time.Now().UTC().AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user activity")
	}

	out := make([]UserActivityEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserActivityEntry{
			Role:        row.Role,
			ActiveUsers: row.ActiveUsers,
			UsageCount:  row.UsageCount,
		})
	}
	return &UserActivityResult{WindowDays: windowDays, Roles: out}, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardResult, error) {
	byStatus, err := s.repo.EquipmentStatusDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "equipment status distribution")
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reservationsToday, err := s.repo.ReservationCountBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservations today")
	}

	unassigned, err := s.repo.UnassignedMaintenanceCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unassigned maintenance count")
	}

	usages, err := s.repo.RecentUsages(ctx, dashboardRecentUsages)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recent usages")
	}

	recent := make([]DashboardUsage, 0, len(usages))
	for _, row := range usages {
		item := DashboardUsage{
			ID:        row.ID,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
		}
		if row.Equipment != nil {
			item.EquipmentNo = row.Equipment.EquipmentNo
			item.EquipmentName = row.Equipment.Name
		}
		if row.User != nil {
			item.UserName = row.User.Name
		}
		recent = append(recent, item)
	}

	return &DashboardResult{
		EquipmentByStatus:     toBuckets(byStatus),
		ReservationsToday:     reservationsToday,
		UnassignedMaintenance: unassigned,
		RecentUsages:          recent,
	}, nil
}

func toBuckets(rows []Distribution) []Bucket {
	out := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, Bucket{Label: row.Label, Count: row.Count})
	}
	return out
}

// utilizationPct expresses used hours against capacity, capped at 100.
func utilizationPct(used, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	pct := used / capacity * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return round2(pct)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
