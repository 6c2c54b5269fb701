package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/usage"
	pkgdb "github.com/campuslabs/equiptrack-backend/pkg/db"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/export"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentUsageLimit = 10

type equipmentRepository interface {
	Create(ctx context.Context, row *models.Equipment) (*models.Equipment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	EquipmentNoTaken(ctx context.Context, equipmentNo string) (bool, error)
	List(ctx context.Context, opts listQuery) ([]models.Equipment, int64, error)
	ListAll(ctx context.Context) ([]models.Equipment, error)
	Update(ctx context.Context, row *models.Equipment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type usageReader interface {
	ActiveForEquipment(ctx context.Context, equipmentID uuid.UUID) (*models.EquipmentUsage, error)
	RecentForEquipment(ctx context.Context, equipmentID uuid.UUID, limit int) ([]models.EquipmentUsage, error)
	TotalsForEquipment(ctx context.Context, equipmentID uuid.UUID) (*usage.UsageTotals, error)
	HasAnyForEquipment(ctx context.Context, equipmentID uuid.UUID) (bool, error)
}

// Service exposes the equipment inventory operations.
type Service interface {
	Create(ctx context.Context, actor audit.Actor, input CreateInput) (*EquipmentView, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*EquipmentView, error)
	Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*EquipmentView, error)
	Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error
	Archive(ctx context.Context, actor audit.Actor, id uuid.UUID, input ArchiveInput) (*ArchiveResult, error)
	Activate(ctx context.Context, actor audit.Actor, id uuid.UUID, input ActivateInput) (*EquipmentView, error)
	ExportCSV(ctx context.Context, actor audit.Actor) (*export.CSV, string, error)
	Statistics(ctx context.Context, id uuid.UUID) (*StatsResult, error)
}

type service struct {
	repo     equipmentRepository
	usages   usageReader
	recorder audit.Recorder
}

// NewService builds the equipment service.
func NewService(repo equipmentRepository, usages usageReader, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if usages == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, usages: usages, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (*EquipmentView, error) {
	equipmentNo := strings.TrimSpace(input.EquipmentNo)
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	taken, err := s.repo.EquipmentNoTaken(ctx, equipmentNo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check equipment number")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "equipment number already exists")
	}

	row := &models.Equipment{
		EquipmentNo:  equipmentNo,
		Name:         strings.TrimSpace(input.Name),
		Model:        strings.TrimSpace(input.Model),
		PurchaseDate: input.PurchaseDate,
		Location:     strings.TrimSpace(input.Location),
		Category:     input.Category,
		Status:       enums.EquipmentStatusRunning,
		Description:  input.Description,
		Value:        input.Value,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		// the unique index is the last line of defense against racing creates
		if pkgdb.IsUniqueViolation(err, "idx_equipment_equipment_no") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "equipment number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create equipment")
	}

	s.recorder.Record(ctx, actor.Entry("create", "equipment", fmt.Sprintf("created equipment %s (%s)", created.EquipmentNo, created.Name)))
	return toView(created), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	opts := listQuery{
		equipmentNo: strings.TrimSpace(params.EquipmentNo),
		search:      strings.TrimSpace(params.Search),
		location:    strings.TrimSpace(params.Location),
		limit:       page.Limit,
		offset:      page.Offset(),
	}
	if params.Status != "" {
		status, err := enums.ParseEquipmentStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		opts.status = status
	}
	if params.Category != "" {
		category, err := enums.ParseEquipmentCategory(params.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
		}
		opts.category = category
	}

	rows, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list equipment")
	}

	views := make([]EquipmentView, 0, len(rows))
	for i := range rows {
		view := toView(&rows[i])
		if rows[i].Status == enums.EquipmentStatusRunning {
			if active, err := s.usages.ActiveForEquipment(ctx, rows[i].ID); err == nil && active != nil {
				view.ActiveUsage = toActiveUsage(active)
			}
		}
		views = append(views, *view)
	}

	return &ListResult{
		Equipment:  views,
		Pagination: pkgpagination.MetaFor(page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EquipmentView, error) {
	row, err := s.findEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	view := toView(row)

	if active, err := s.usages.ActiveForEquipment(ctx, row.ID); err == nil && active != nil {
		view.ActiveUsage = toActiveUsage(active)
	}
	if recent, err := s.usages.RecentForEquipment(ctx, row.ID, recentUsageLimit); err == nil {
		view.RecentUsages = toUsageRecords(recent)
	}

	return view, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*EquipmentView, error) {
	row, err := s.findEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Model != nil {
		row.Model = strings.TrimSpace(*input.Model)
	}
	if input.PurchaseDate != nil {
		row.PurchaseDate = *input.PurchaseDate
	}
	if input.Location != nil {
		row.Location = strings.TrimSpace(*input.Location)
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		row.Category = *input.Category
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		row.Status = *input.Status
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Value != nil {
		row.Value = input.Value
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update equipment")
	}

	s.recorder.Record(ctx, actor.Entry("update", "equipment", fmt.Sprintf("updated equipment %s", row.EquipmentNo)))
	return toView(row), nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	row, err := s.findEquipment(ctx, id)
	if err != nil {
		return err
	}

	used, err := s.usages.HasAnyForEquipment(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check usage history")
	}
	if used {
		return pkgerrors.New(pkgerrors.CodeConflict, "equipment has usage records; archive it instead of deleting")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete equipment")
	}

	s.recorder.Record(ctx, actor.Entry("delete", "equipment", fmt.Sprintf("deleted equipment %s", row.EquipmentNo)))
	return nil
}

func (s *service) Archive(ctx context.Context, actor audit.Actor, id uuid.UUID, input ArchiveInput) (*ArchiveResult, error) {
	note := strings.TrimSpace(input.Note)
	if len(note) < 5 || len(note) > 300 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note must be 5 to 300 characters")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if strings.TrimSpace(input.Period) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period is required")
	}

	row, err := s.findEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status == enums.EquipmentStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "equipment is already archived")
	}

	row.Status = enums.EquipmentStatusArchived
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archive equipment")
	}

	archivedAt := time.Now().UTC()
	s.recorder.Record(ctx, actor.Entry("update", "equipment",
		fmt.Sprintf("archived equipment %s (reason: %s, period: %s)", row.EquipmentNo, input.Reason, input.Period)))

	return &ArchiveResult{
		Equipment:  *toView(row),
		Reason:     input.Reason,
		Note:       note,
		Period:     input.Period,
		ArchivedAt: archivedAt,
	}, nil
}

func (s *service) Activate(ctx context.Context, actor audit.Actor, id uuid.UUID, input ActivateInput) (*EquipmentView, error) {
	reason := strings.TrimSpace(input.Reason)
	if len(reason) < 5 || len(reason) > 200 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason must be 5 to 200 characters")
	}
	if !input.Confirmation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmation must be normal, needs_repair, or needs_replacement")
	}

	row, err := s.findEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != enums.EquipmentStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only archived equipment can be activated")
	}

	row.Status = input.Confirmation.TargetStatus()
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate equipment")
	}

	s.recorder.Record(ctx, actor.Entry("update", "equipment",
		fmt.Sprintf("activated equipment %s as %s (reason: %s)", row.EquipmentNo, row.Status, reason)))
	return toView(row), nil
}

func (s *service) ExportCSV(ctx context.Context, actor audit.Actor) (*export.CSV, string, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment for export")
	}

	doc, err := export.NewCSV([]string{
		"equipment_no", "name", "model", "purchase_date", "location",
		"category", "status", "description", "value",
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start export")
	}

	for i := range rows {
		row := &rows[i]
		description := ""
		if row.Description != nil {
			description = *row.Description
		}
		value := ""
		if row.Value != nil {
			value = row.Value.StringFixed(2)
		}
		record := []string{
			row.EquipmentNo,
			row.Name,
			row.Model,
			row.PurchaseDate.Format("2006-01-02"),
			row.Location,
			row.Category.String(),
			row.Status.String(),
			description,
			value,
		}
		if err := doc.AppendRow(record); err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export row")
		}
	}

	filename := fmt.Sprintf("equipment_%s.csv", time.Now().UTC().Format("2006-01-02"))
	s.recorder.Record(ctx, actor.Entry("export", "equipment", fmt.Sprintf("exported %d equipment rows", len(rows))))
	return doc, filename, nil
}

func (s *service) Statistics(ctx context.Context, id uuid.UUID) (*StatsResult, error) {
	if _, err := s.findEquipment(ctx, id); err != nil {
		return nil, err
	}

	totals, err := s.usages.TotalsForEquipment(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate usage")
	}
	recent, err := s.usages.RecentForEquipment(ctx, id, recentUsageLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent usage")
	}

	return &StatsResult{
		UsageCount:   totals.Count,
		TotalHours:   totals.Hours,
		RecentUsages: toUsageRecords(recent),
	}, nil
}

func (s *service) findEquipment(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}
	return row, nil
}

func toActiveUsage(row *models.EquipmentUsage) *ActiveUsage {
	active := &ActiveUsage{
		UserID:    row.UserID,
		Purpose:   row.Purpose,
		StartTime: row.StartTime,
	}
	if row.User != nil {
		active.UserName = row.User.Name
	}
	return active
}

func toUsageRecords(rows []models.EquipmentUsage) []UsageRecord {
	records := make([]UsageRecord, 0, len(rows))
	for i := range rows {
		record := UsageRecord{
			ID:        rows[i].ID,
			Purpose:   rows[i].Purpose,
			StartTime: rows[i].StartTime,
			EndTime:   rows[i].EndTime,
			Status:    rows[i].Status,
		}
		if rows[i].User != nil {
			record.UserName = rows[i].User.Name
		}
		records = append(records, record)
	}
	return records
}
