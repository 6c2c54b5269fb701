package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubReservationRepo struct {
	existing []models.Reservation
	created  []*models.Reservation
	updated  []*models.Reservation
	byID     map[uuid.UUID]*models.Reservation
}

func (s *stubReservationRepo) CountOverlapping(_ *gorm.DB, equipmentID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	for _, row := range s.existing {
		if row.EquipmentID != equipmentID {
			continue
		}
		blocking := false
		for _, st := range enums.BlockingReservationStatuses {
			if row.Status == st {
				blocking = true
			}
		}
		if !blocking {
			continue
		}
		if row.StartTime.Before(end) && start.Before(row.EndTime) {
			count++
		}
	}
	return count, nil
}

func (s *stubReservationRepo) CreateTx(_ *gorm.DB, row *models.Reservation) error {
	row.ID = uuid.New()
	s.created = append(s.created, row)
	return nil
}

func (s *stubReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReservationRepo) List(context.Context, listQuery) ([]models.Reservation, int64, error) {
	return s.existing, int64(len(s.existing)), nil
}

func (s *stubReservationRepo) ListBlockingForWindow(_ context.Context, equipmentID uuid.UUID, start, end time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, row := range s.existing {
		if row.EquipmentID == equipmentID && row.StartTime.Before(end) && start.Before(row.EndTime) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubReservationRepo) Update(_ context.Context, row *models.Reservation) error {
	s.updated = append(s.updated, row)
	return nil
}

type stubEquipmentFinder struct {
	rows map[uuid.UUID]*models.Equipment
}

func (s *stubEquipmentFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Equipment, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithSerializableTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T, repo *stubReservationRepo, equip *stubEquipmentFinder) (Service, *recordingAudit) {
	t.Helper()
	rec := &recordingAudit{}
	svc, err := NewService(repo, equip, stubTxRunner{}, rec)
	require.NoError(t, err)
	return svc, rec
}

func runningEquipment() *models.Equipment {
	return &models.Equipment{
		ID:          uuid.New(),
		EquipmentNo: "EQ-1001",
		Name:        "Oscilloscope",
		Status:      enums.EquipmentStatusRunning,
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	equip := runningEquipment()
	svc, _ := newTestService(t, &stubReservationRepo{}, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	start := time.Now().Add(2 * time.Hour)
	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		StartTime:   start,
		EndTime:     start.Add(-time.Hour),
		Purpose:     "lab session",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateRejectsPastStart(t *testing.T) {
	equip := runningEquipment()
	svc, _ := newTestService(t, &stubReservationRepo{}, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		StartTime:   time.Now().Add(-time.Hour),
		EndTime:     time.Now().Add(time.Hour),
		Purpose:     "lab session",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateConflictsWithOverlappingWindow(t *testing.T) {
	equip := runningEquipment()
	day := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	ten := day.Add(10 * time.Hour)

	repo := &stubReservationRepo{existing: []models.Reservation{{
		EquipmentID: equip.ID,
		StartTime:   ten,
		EndTime:     ten.Add(time.Hour),
		Status:      enums.ReservationStatusApproved,
	}}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	// [10:30, 11:30) collides with the approved [10:00, 11:00)
	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		StartTime:   ten.Add(30 * time.Minute),
		EndTime:     ten.Add(90 * time.Minute),
		Purpose:     "lab session",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Empty(t, repo.created)
}

func TestCreateAdmitsAdjacentWindow(t *testing.T) {
	equip := runningEquipment()
	day := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	ten := day.Add(10 * time.Hour)

	repo := &stubReservationRepo{existing: []models.Reservation{{
		EquipmentID: equip.ID,
		StartTime:   ten,
		EndTime:     ten.Add(time.Hour),
		Status:      enums.ReservationStatusApproved,
	}}}
	svc, rec := newTestService(t, repo, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	// [11:00, 12:00) shares only the boundary instant and must be admitted
	view, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		StartTime:   ten.Add(time.Hour),
		EndTime:     ten.Add(2 * time.Hour),
		Purpose:     "lab session",
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusPending, view.Status)
	require.Len(t, repo.created, 1)
	require.Len(t, rec.entries, 1)
}

func TestCreateRejectsUnavailableEquipment(t *testing.T) {
	equip := runningEquipment()
	equip.Status = enums.EquipmentStatusUnderRepair
	svc, _ := newTestService(t, &stubReservationRepo{}, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		Purpose:     "lab session",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCancelOnlyByRequester(t *testing.T) {
	owner := uuid.New()
	row := &models.Reservation{
		ID:     uuid.New(),
		UserID: owner,
		Status: enums.ReservationStatusPending,
	}
	repo := &stubReservationRepo{byID: map[uuid.UUID]*models.Reservation{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Cancel(context.Background(), audit.Actor{ID: uuid.New()}, row.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	view, err := svc.Cancel(context.Background(), audit.Actor{ID: owner}, row.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusCancelled, view.Status)
}

func TestReviewRequiresPending(t *testing.T) {
	row := &models.Reservation{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.ReservationStatusApproved,
	}
	repo := &stubReservationRepo{byID: map[uuid.UUID]*models.Reservation{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Review(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, ReviewInput{Action: ReviewApprove})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestReviewRejectNeedsReason(t *testing.T) {
	row := &models.Reservation{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.ReservationStatusPending,
	}
	repo := &stubReservationRepo{byID: map[uuid.UUID]*models.Reservation{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Review(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, ReviewInput{Action: ReviewReject})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCompleteWaitsForWindowEnd(t *testing.T) {
	row := &models.Reservation{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    enums.ReservationStatusApproved,
	}
	repo := &stubReservationRepo{byID: map[uuid.UUID]*models.Reservation{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Complete(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	require.Empty(t, repo.updated)
}

func TestCompleteAfterWindowEnd(t *testing.T) {
	row := &models.Reservation{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		StartTime: time.Now().Add(-3 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
		Status:    enums.ReservationStatusApproved,
	}
	repo := &stubReservationRepo{byID: map[uuid.UUID]*models.Reservation{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	view, err := svc.Complete(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusCompleted, view.Status)
	require.Len(t, repo.updated, 1)
}

func TestAvailableSlotsMarksIntersections(t *testing.T) {
	equip := runningEquipment()
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	ten := day.Add(10 * time.Hour)

	repo := &stubReservationRepo{existing: []models.Reservation{{
		EquipmentID: equip.ID,
		StartTime:   ten,
		EndTime:     ten.Add(time.Hour),
		Status:      enums.ReservationStatusApproved,
	}}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	result, err := svc.AvailableSlots(context.Background(), equip.ID, day)
	require.NoError(t, err)
	require.Len(t, result.Slots, 10)
	require.Len(t, result.Occupied, 1)

	for _, slot := range result.Slots {
		switch slot.Start.Hour() {
		case 10:
			require.False(t, slot.Available, "10:00 slot must be blocked")
		default:
			require.True(t, slot.Available, "slot at %d:00 should be free", slot.Start.Hour())
		}
	}
}
