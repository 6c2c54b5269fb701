package maintenance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	faultDescriptionMin  = 10
	faultDescriptionMax  = 500
	repairDescriptionMin = 10
	repairDescriptionMax = 1000
)

type maintenanceRepository interface {
	Create(ctx context.Context, row *models.Maintenance) (*models.Maintenance, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Maintenance, error)
	List(ctx context.Context, opts listQuery) ([]models.Maintenance, int64, error)
	Update(ctx context.Context, row *models.Maintenance) error
	CountByStatus(ctx context.Context) (*StatusCounts, error)
}

type equipmentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	Update(ctx context.Context, row *models.Equipment) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes the maintenance ticket lifecycle.
type Service interface {
	Create(ctx context.Context, actor audit.Actor, input CreateInput) (*TicketView, error)
	List(ctx context.Context, actor audit.Actor, params ListParams) (*ListResult, error)
	Get(ctx context.Context, actor audit.Actor, id uuid.UUID) (*TicketView, error)
	Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*TicketView, error)
	Assign(ctx context.Context, actor audit.Actor, id uuid.UUID, input AssignInput) (*TicketView, error)
	Complete(ctx context.Context, actor audit.Actor, id uuid.UUID, input CompleteInput) (*TicketView, error)
	Stats(ctx context.Context) (*StatsResult, error)
}

type service struct {
	repo      maintenanceRepository
	equipment equipmentStore
	users     userFinder
	recorder  audit.Recorder
}

// NewService builds the maintenance service.
func NewService(repo maintenanceRepository, equipment equipmentStore, users userFinder, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("maintenance repository required")
	}
	if equipment == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, equipment: equipment, users: users, recorder: recorder}, nil
}

// newTicketNo builds a ticket number like MT20250901153000ab3f.
func newTicketNo(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return "MT" + now.UTC().Format("20060102150405") + hex.EncodeToString(suffix)
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (*TicketView, error) {
	desc := strings.TrimSpace(input.FaultDesc)
	if len(desc) < faultDescriptionMin || len(desc) > faultDescriptionMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("fault description must be %d to %d characters", faultDescriptionMin, faultDescriptionMax))
	}

	faultType := input.FaultType
	if faultType == "" {
		faultType = enums.FaultTypeOther
	}
	if !faultType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fault type")
	}

	priority := input.Priority
	if priority == "" {
		priority = enums.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = priority
	}
	if !urgency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid urgency")
	}

	equipment, err := s.findEquipment(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if equipment.Status == enums.EquipmentStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "archived equipment cannot be reported")
	}

	row := &models.Maintenance{
		TicketNo:         newTicketNo(time.Now()),
		EquipmentID:      equipment.ID,
		ReporterID:       actor.ID,
		FaultDescription: desc,
		FaultType:        faultType,
		Status:           enums.MaintenanceStatusUnassigned,
		Priority:         priority,
		Urgency:          urgency,
		ContactPhone:     input.ContactPhone,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create maintenance ticket")
	}

	// A reported fault takes the unit out of service immediately.
	if equipment.Status != enums.EquipmentStatusUnderRepair {
		equipment.Status = enums.EquipmentStatusUnderRepair
		if err := s.equipment.Update(ctx, equipment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flag equipment under repair")
		}
	}

	s.recorder.Record(ctx, actor.Entry("create", "maintenance",
		fmt.Sprintf("reported fault %s on equipment %s", created.TicketNo, equipment.EquipmentNo)))

	created.Equipment = equipment
	return toView(created), nil
}

func (s *service) List(ctx context.Context, actor audit.Actor, params ListParams) (*ListResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	opts := listQuery{
		ticketNo:      strings.TrimSpace(params.TicketNo),
		equipmentName: strings.TrimSpace(params.EquipmentName),
		limit:         page.Limit,
		offset:        page.Offset(),
	}
	// students only ever see their own reports
	if !actor.Role.CanManage() {
		opts.reporterID = actor.ID
	}
	if params.Status != "" {
		status, err := enums.ParseMaintenanceStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		opts.status = status
	}
	if params.Priority != "" {
		priority, err := enums.ParsePriority(params.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority filter")
		}
		opts.priority = priority
	}
	if params.Urgency != "" {
		urgency, err := enums.ParsePriority(params.Urgency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid urgency filter")
		}
		opts.urgency = urgency
	}
	if params.FaultType != "" {
		faultType, err := enums.ParseFaultType(params.FaultType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fault type filter")
		}
		opts.faultType = faultType
	}

	rows, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list maintenance tickets")
	}

	views := make([]TicketView, 0, len(rows))
	for i := range rows {
		views = append(views, *toView(&rows[i]))
	}

	return &ListResult{
		Tickets:    views,
		Pagination: pkgpagination.MetaFor(page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, actor audit.Actor, id uuid.UUID) (*TicketView, error) {
	row, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage() && row.ReporterID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you may only view your own reports")
	}
	return toView(row), nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*TicketView, error) {
	row, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FaultDescription != nil {
		desc := strings.TrimSpace(*input.FaultDescription)
		if len(desc) < faultDescriptionMin || len(desc) > faultDescriptionMax {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("fault description must be %d to %d characters", faultDescriptionMin, faultDescriptionMax))
		}
		row.FaultDescription = desc
	}
	if input.FaultType != nil {
		if !input.FaultType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fault type")
		}
		row.FaultType = *input.FaultType
	}
	if input.RepairDescription != nil {
		row.RepairDescription = input.RepairDescription
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		row.Priority = *input.Priority
	}
	if input.Urgency != nil {
		if !input.Urgency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid urgency")
		}
		row.Urgency = *input.Urgency
	}
	if input.ContactPhone != nil {
		row.ContactPhone = input.ContactPhone
	}

	completedNow := false
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if *input.Status == enums.MaintenanceStatusCompleted && row.Status != enums.MaintenanceStatusCompleted {
			completedNow = true
		}
		row.Status = *input.Status
	}
	if completedNow {
		now := time.Now().UTC()
		row.ActualCompletion = &now
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update maintenance ticket")
	}

	if completedNow {
		if err := s.restoreEquipment(ctx, row.EquipmentID); err != nil {
			return nil, err
		}
	}

	s.recorder.Record(ctx, actor.Entry("update", "maintenance",
		fmt.Sprintf("updated ticket %s", row.TicketNo)))
	return toView(row), nil
}

func (s *service) Assign(ctx context.Context, actor audit.Actor, id uuid.UUID, input AssignInput) (*TicketView, error) {
	row, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != enums.MaintenanceStatusUnassigned && row.Status != enums.MaintenanceStatusInRepair {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket can no longer be assigned").
			WithDetails(map[string]any{"status": row.Status})
	}

	maintainer, err := s.users.FindByID(ctx, input.MaintainerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintainer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load maintainer")
	}

	maintainerID := maintainer.ID
	row.MaintainerID = &maintainerID
	row.Status = enums.MaintenanceStatusInRepair
	if input.EstimatedCompletion != nil {
		row.EstimatedCompletion = input.EstimatedCompletion
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign maintenance ticket")
	}

	s.recorder.Record(ctx, actor.Entry("update", "maintenance",
		fmt.Sprintf("assigned ticket %s to %s", row.TicketNo, maintainer.Name)))

	row.Maintainer = maintainer
	return toView(row), nil
}

func (s *service) Complete(ctx context.Context, actor audit.Actor, id uuid.UUID, input CompleteInput) (*TicketView, error) {
	desc := strings.TrimSpace(input.RepairDescription)
	if len(desc) < repairDescriptionMin || len(desc) > repairDescriptionMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("repair description must be %d to %d characters", repairDescriptionMin, repairDescriptionMax))
	}

	row, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status == enums.MaintenanceStatusCompleted || row.Status == enums.MaintenanceStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is already completed").
			WithDetails(map[string]any{"status": row.Status})
	}

	now := time.Now().UTC()
	row.Status = enums.MaintenanceStatusCompleted
	row.RepairDescription = &desc
	row.ActualCompletion = &now
	if input.Cost != nil {
		row.Cost = input.Cost
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete maintenance ticket")
	}

	if err := s.restoreEquipment(ctx, row.EquipmentID); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.Entry("update", "maintenance",
		fmt.Sprintf("completed ticket %s", row.TicketNo)))
	return toView(row), nil
}

func (s *service) Stats(ctx context.Context) (*StatsResult, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count maintenance tickets")
	}
	return &StatsResult{
		Unassigned: counts.Unassigned,
		InRepair:   counts.InRepair,
		Completed:  counts.Completed,
		Total:      counts.Total,
	}, nil
}

// restoreEquipment returns a repaired unit to service. Archived units keep
// their archived status.
func (s *service) restoreEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	equipment, err := s.findEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	if equipment.Status != enums.EquipmentStatusUnderRepair {
		return nil
	}
	equipment.Status = enums.EquipmentStatusRunning
	if err := s.equipment.Update(ctx, equipment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore equipment status")
	}
	return nil
}

func (s *service) findTicket(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load maintenance ticket")
	}
	return row, nil
}

func (s *service) findEquipment(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	row, err := s.equipment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}
	return row, nil
}
