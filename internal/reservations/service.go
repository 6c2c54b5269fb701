package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	pkgdb "github.com/campuslabs/equiptrack-backend/pkg/db"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookable hours run 08:00 to 18:00 in hourly slots.
const (
	workDayStartHour = 8
	workDayEndHour   = 18
)

type reservationRepository interface {
	CountOverlapping(tx *gorm.DB, equipmentID uuid.UUID, start, end time.Time) (int64, error)
	CreateTx(tx *gorm.DB, row *models.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, opts listQuery) ([]models.Reservation, int64, error)
	ListBlockingForWindow(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) ([]models.Reservation, error)
	Update(ctx context.Context, row *models.Reservation) error
}

type equipmentFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
}

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the reservation lifecycle.
type Service interface {
	Create(ctx context.Context, actor audit.Actor, input CreateInput) (*ReservationView, error)
	List(ctx context.Context, actor audit.Actor, params ListParams) (*ListResult, error)
	Review(ctx context.Context, actor audit.Actor, id uuid.UUID, input ReviewInput) (*ReservationView, error)
	Cancel(ctx context.Context, actor audit.Actor, id uuid.UUID) (*ReservationView, error)
	Complete(ctx context.Context, actor audit.Actor, id uuid.UUID) (*ReservationView, error)
	AvailableSlots(ctx context.Context, equipmentID uuid.UUID, date time.Time) (*SlotsResult, error)
}

type service struct {
	repo      reservationRepository
	equipment equipmentFinder
	tx        txRunner
	recorder  audit.Recorder
}

// NewService builds the reservation service.
func NewService(repo reservationRepository, equipment equipmentFinder, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if equipment == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, equipment: equipment, tx: tx, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (*ReservationView, error) {
	if !input.StartTime.Before(input.EndTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time must be before end time")
	}
	if input.StartTime.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time cannot be in the past")
	}
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purpose is required")
	}

	equipment, err := s.equipment.FindByID(ctx, input.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}
	if equipment.Status != enums.EquipmentStatusRunning {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "equipment is not available for reservation").
			WithDetails(map[string]any{"status": equipment.Status})
	}

	row := &models.Reservation{
		EquipmentID: equipment.ID,
		UserID:      actor.ID,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Purpose:     purpose,
		Status:      enums.ReservationStatusPending,
	}

	// The overlap check and insert share one serializable transaction so two
	// concurrent requests for the same window cannot both pass the check.
	err = s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		overlapping, err := s.repo.CountOverlapping(tx, equipment.ID, input.StartTime, input.EndTime)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "the requested window conflicts with an existing reservation")
		}
		return s.repo.CreateTx(tx, row)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if pkgdb.IsSerializationFailure(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "the requested window conflicts with a concurrent reservation")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
	}

	s.recorder.Record(ctx, actor.Entry("create", "reservation",
		fmt.Sprintf("reserved equipment %s from %s to %s", equipment.EquipmentNo,
			input.StartTime.Format(time.RFC3339), input.EndTime.Format(time.RFC3339))))

	row.Equipment = equipment
	return toView(row), nil
}

func (s *service) List(ctx context.Context, actor audit.Actor, params ListParams) (*ListResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	opts := listQuery{limit: page.Limit, offset: page.Offset()}
	// students only ever see their own reservations
	if !actor.Role.CanManage() {
		opts.userID = actor.ID
	}
	if params.Status != "" {
		status, err := enums.ParseReservationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		opts.status = status
	}

	rows, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reservations")
	}

	views := make([]ReservationView, 0, len(rows))
	for i := range rows {
		views = append(views, *toView(&rows[i]))
	}

	return &ListResult{
		Reservations: views,
		Pagination:   pkgpagination.MetaFor(page, total),
	}, nil
}

func (s *service) Review(ctx context.Context, actor audit.Actor, id uuid.UUID, input ReviewInput) (*ReservationView, error) {
	if input.Action != ReviewApprove && input.Action != ReviewReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject")
	}

	row, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending reservations can be reviewed").
			WithDetails(map[string]any{"status": row.Status})
	}

	now := time.Now().UTC()
	approver := actor.ID
	row.ApprovedBy = &approver
	row.ApprovedAt = &now

	if input.Action == ReviewApprove {
		row.Status = enums.ReservationStatusApproved
	} else {
		reason := strings.TrimSpace(input.RejectReason)
		if reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reject reason is required")
		}
		row.Status = enums.ReservationStatusRejected
		row.RejectReason = &reason
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review reservation")
	}

	s.recorder.Record(ctx, actor.Entry("update", "reservation",
		fmt.Sprintf("%sd reservation %s", input.Action, row.ID)))
	return toView(row), nil
}

func (s *service) Cancel(ctx context.Context, actor audit.Actor, id uuid.UUID) (*ReservationView, error) {
	row, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester may cancel a reservation")
	}
	if row.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending reservations can be cancelled").
			WithDetails(map[string]any{"status": row.Status})
	}

	row.Status = enums.ReservationStatusCancelled
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel reservation")
	}

	s.recorder.Record(ctx, actor.Entry("update", "reservation", fmt.Sprintf("cancelled reservation %s", row.ID)))
	return toView(row), nil
}

func (s *service) Complete(ctx context.Context, actor audit.Actor, id uuid.UUID) (*ReservationView, error) {
	row, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != enums.ReservationStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only approved reservations can be completed").
			WithDetails(map[string]any{"status": row.Status})
	}
	if time.Now().Before(row.EndTime) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation window has not ended yet")
	}

	row.Status = enums.ReservationStatusCompleted
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete reservation")
	}

	s.recorder.Record(ctx, actor.Entry("update", "reservation", fmt.Sprintf("completed reservation %s", row.ID)))
	return toView(row), nil
}

func (s *service) AvailableSlots(ctx context.Context, equipmentID uuid.UUID, date time.Time) (*SlotsResult, error) {
	equipment, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}
	if equipment.Status != enums.EquipmentStatusRunning {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "equipment is not available for reservation").
			WithDetails(map[string]any{"status": equipment.Status})
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	blocking, err := s.repo.ListBlockingForWindow(ctx, equipmentID, dayStart, dayEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservations")
	}

	slots := make([]Slot, 0, workDayEndHour-workDayStartHour)
	for hour := workDayStartHour; hour < workDayEndHour; hour++ {
		slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)

		available := true
		for i := range blocking {
			if blocking[i].StartTime.Before(slotEnd) && slotStart.Before(blocking[i].EndTime) {
				available = false
				break
			}
		}

		slots = append(slots, Slot{Start: slotStart, End: slotEnd, Available: available})
	}

	occupied := make([]OccupiedWindow, 0, len(blocking))
	for i := range blocking {
		occupied = append(occupied, OccupiedWindow{
			StartTime: blocking[i].StartTime,
			EndTime:   blocking[i].EndTime,
			Status:    blocking[i].Status,
		})
	}

	return &SlotsResult{
		EquipmentID: equipmentID,
		Date:        dayStart.Format("2006-01-02"),
		Slots:       slots,
		Occupied:    occupied,
	}, nil
}

func (s *service) findReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservation")
	}
	return row, nil
}
