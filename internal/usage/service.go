package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type usageRepository interface {
	Create(ctx context.Context, row *models.EquipmentUsage) (*models.EquipmentUsage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.EquipmentUsage, error)
	ActiveForEquipment(ctx context.Context, equipmentID uuid.UUID) (*models.EquipmentUsage, error)
	Update(ctx context.Context, row *models.EquipmentUsage) error
}

type equipmentFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
}

// StartInput describes a usage session being opened.
type StartInput struct {
	EquipmentID uuid.UUID
	Purpose     string
}

// FinishInput closes a usage session.
type FinishInput struct {
	UsageID uuid.UUID
	Notes   *string
}

// UsageView is the serialized usage record.
type UsageView struct {
	ID          uuid.UUID         `json:"id"`
	EquipmentID uuid.UUID         `json:"equipment_id"`
	UserID      uuid.UUID         `json:"user_id"`
	UserName    string            `json:"user_name,omitempty"`
	Purpose     string            `json:"purpose"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	Status      enums.UsageStatus `json:"status"`
	Notes       *string           `json:"notes,omitempty"`
}

// Service opens and closes equipment usage sessions.
type Service interface {
	Start(ctx context.Context, actor audit.Actor, input StartInput) (*UsageView, error)
	Finish(ctx context.Context, actor audit.Actor, input FinishInput) (*UsageView, error)
}

type service struct {
	repo      usageRepository
	equipment equipmentFinder
	recorder  audit.Recorder
}

// NewService builds the usage service.
func NewService(repo usageRepository, equipment equipmentFinder, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	if equipment == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, equipment: equipment, recorder: recorder}, nil
}

func (s *service) Start(ctx context.Context, actor audit.Actor, input StartInput) (*UsageView, error) {
	equipment, err := s.equipment.FindByID(ctx, input.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}

	if equipment.Status != enums.EquipmentStatusRunning {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "equipment is not available for use").
			WithDetails(map[string]any{"status": equipment.Status})
	}

	active, err := s.repo.ActiveForEquipment(ctx, equipment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check active usage")
	}
	if active != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "equipment is already in use")
	}

	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purpose is required")
	}

	row := &models.EquipmentUsage{
		EquipmentID: equipment.ID,
		UserID:      actor.ID,
		Purpose:     purpose,
		StartTime:   time.Now().UTC(),
		Status:      enums.UsageStatusInUse,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create usage record")
	}

	s.recorder.Record(ctx, actor.Entry("create", "equipment", fmt.Sprintf("started using equipment %s", equipment.EquipmentNo)))
	return toUsageView(created), nil
}

func (s *service) Finish(ctx context.Context, actor audit.Actor, input FinishInput) (*UsageView, error) {
	row, err := s.repo.FindByID(ctx, input.UsageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "usage record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage record")
	}

	if row.UserID != actor.ID && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the user or an admin may finish this record")
	}
	if row.Status != enums.UsageStatusInUse {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "usage record is already completed")
	}

	now := time.Now().UTC()
	row.EndTime = &now
	row.Status = enums.UsageStatusCompleted
	if input.Notes != nil {
		row.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finish usage record")
	}

	s.recorder.Record(ctx, actor.Entry("update", "equipment", "finished equipment usage"))
	return toUsageView(row), nil
}

func toUsageView(row *models.EquipmentUsage) *UsageView {
	view := &UsageView{
		ID:          row.ID,
		EquipmentID: row.EquipmentID,
		UserID:      row.UserID,
		Purpose:     row.Purpose,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Status:      row.Status,
		Notes:       row.Notes,
	}
	if row.User != nil {
		view.UserName = row.User.Name
	}
	return view
}
