package usage

import (
	"context"
	"testing"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUsageRepo struct {
	byID    map[uuid.UUID]*models.EquipmentUsage
	active  *models.EquipmentUsage
	created []*models.EquipmentUsage
	updated []*models.EquipmentUsage
}

func (s *stubUsageRepo) Create(_ context.Context, row *models.EquipmentUsage) (*models.EquipmentUsage, error) {
	row.ID = uuid.New()
	s.created = append(s.created, row)
	return row, nil
}

func (s *stubUsageRepo) FindByID(_ context.Context, id uuid.UUID) (*models.EquipmentUsage, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsageRepo) ActiveForEquipment(context.Context, uuid.UUID) (*models.EquipmentUsage, error) {
	return s.active, nil
}

func (s *stubUsageRepo) Update(_ context.Context, row *models.EquipmentUsage) error {
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

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T, repo *stubUsageRepo, equip *stubEquipmentFinder) (Service, *recordingAudit) {
	t.Helper()
	rec := &recordingAudit{}
	svc, err := NewService(repo, equip, rec)
	require.NoError(t, err)
	return svc, rec
}

func TestStartOpensSession(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), EquipmentNo: "EQ-3001", Status: enums.EquipmentStatusRunning}
	repo := &stubUsageRepo{}
	svc, rec := newTestService(t, repo, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	actor := audit.Actor{ID: uuid.New(), Role: enums.RoleStudent}
	view, err := svc.Start(context.Background(), actor, StartInput{EquipmentID: equip.ID, Purpose: "circuits lab"})
	require.NoError(t, err)
	require.Equal(t, enums.UsageStatusInUse, view.Status)
	require.Equal(t, actor.ID, view.UserID)
	require.Nil(t, view.EndTime)
	require.Len(t, repo.created, 1)
	require.Len(t, rec.entries, 1)
}

func TestStartRejectsBusyEquipment(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusRunning}
	repo := &stubUsageRepo{active: &models.EquipmentUsage{ID: uuid.New()}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	_, err := svc.Start(context.Background(), audit.Actor{ID: uuid.New()}, StartInput{EquipmentID: equip.ID, Purpose: "lab"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestStartRejectsUnavailableEquipment(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusUnderRepair}
	svc, _ := newTestService(t, &stubUsageRepo{}, &stubEquipmentFinder{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}})

	_, err := svc.Start(context.Background(), audit.Actor{ID: uuid.New()}, StartInput{EquipmentID: equip.ID, Purpose: "lab"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestFinishOnlyByUserOrAdmin(t *testing.T) {
	owner := uuid.New()
	row := &models.EquipmentUsage{ID: uuid.New(), UserID: owner, Status: enums.UsageStatusInUse}
	repo := &stubUsageRepo{byID: map[uuid.UUID]*models.EquipmentUsage{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Finish(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleStudent}, FinishInput{UsageID: row.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	view, err := svc.Finish(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, FinishInput{UsageID: row.ID})
	require.NoError(t, err)
	require.Equal(t, enums.UsageStatusCompleted, view.Status)
	require.NotNil(t, view.EndTime)
}

func TestFinishRejectsCompletedRecord(t *testing.T) {
	owner := uuid.New()
	row := &models.EquipmentUsage{ID: uuid.New(), UserID: owner, Status: enums.UsageStatusCompleted}
	repo := &stubUsageRepo{byID: map[uuid.UUID]*models.EquipmentUsage{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubEquipmentFinder{})

	_, err := svc.Finish(context.Background(), audit.Actor{ID: owner, Role: enums.RoleStudent}, FinishInput{UsageID: row.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}
