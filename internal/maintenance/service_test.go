package maintenance

import (
	"context"
	"strings"
	"testing"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTicketRepo struct {
	byID    map[uuid.UUID]*models.Maintenance
	created []*models.Maintenance
	updated []*models.Maintenance
	counts  StatusCounts
}

func (s *stubTicketRepo) Create(_ context.Context, row *models.Maintenance) (*models.Maintenance, error) {
	row.ID = uuid.New()
	s.created = append(s.created, row)
	return row, nil
}

func (s *stubTicketRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Maintenance, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTicketRepo) List(context.Context, listQuery) ([]models.Maintenance, int64, error) {
	return nil, 0, nil
}

func (s *stubTicketRepo) Update(_ context.Context, row *models.Maintenance) error {
	s.updated = append(s.updated, row)
	return nil
}

func (s *stubTicketRepo) CountByStatus(context.Context) (*StatusCounts, error) {
	return &s.counts, nil
}

type stubEquipmentStore struct {
	rows    map[uuid.UUID]*models.Equipment
	updated []*models.Equipment
}

func (s *stubEquipmentStore) FindByID(_ context.Context, id uuid.UUID) (*models.Equipment, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubEquipmentStore) Update(_ context.Context, row *models.Equipment) error {
	s.updated = append(s.updated, row)
	return nil
}

type stubUserFinder struct {
	rows map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
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

func newTestService(t *testing.T, repo *stubTicketRepo, equip *stubEquipmentStore, users *stubUserFinder) Service {
	t.Helper()
	if users == nil {
		users = &stubUserFinder{}
	}
	svc, err := NewService(repo, equip, users, &recordingAudit{})
	require.NoError(t, err)
	return svc
}

func TestCreateFlipsEquipmentUnderRepair(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), EquipmentNo: "EQ-2001", Status: enums.EquipmentStatusRunning}
	repo := &stubTicketRepo{}
	store := &stubEquipmentStore{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}}
	svc := newTestService(t, repo, store, nil)

	view, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		FaultDesc:   "screen flickers whenever the probe is attached",
	})
	require.NoError(t, err)
	require.Equal(t, enums.MaintenanceStatusUnassigned, view.Status)
	require.Equal(t, 0, view.Progress)
	require.True(t, strings.HasPrefix(view.TicketNo, "MT"))
	require.Equal(t, enums.EquipmentStatusUnderRepair, equip.Status)
	require.Len(t, store.updated, 1)
}

func TestCreateDefaultsUrgencyToPriority(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusRunning}
	repo := &stubTicketRepo{}
	store := &stubEquipmentStore{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}}
	svc := newTestService(t, repo, store, nil)

	view, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		FaultDesc:   "power supply trips the breaker on startup",
		Priority:    enums.PriorityHigh,
	})
	require.NoError(t, err)
	require.Equal(t, enums.PriorityHigh, view.Priority)
	require.Equal(t, enums.PriorityHigh, view.Urgency)
}

func TestCreateRejectsShortFaultDescription(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusRunning}
	svc := newTestService(t, &stubTicketRepo{}, &stubEquipmentStore{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}}, nil)

	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentID: equip.ID,
		FaultDesc:   "broken",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetHidesOtherReportsFromStudents(t *testing.T) {
	reporter := uuid.New()
	row := &models.Maintenance{ID: uuid.New(), ReporterID: reporter, Status: enums.MaintenanceStatusUnassigned}
	repo := &stubTicketRepo{byID: map[uuid.UUID]*models.Maintenance{row.ID: row}}
	svc := newTestService(t, repo, &stubEquipmentStore{}, nil)

	_, err := svc.Get(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleStudent}, row.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	view, err := svc.Get(context.Background(), audit.Actor{ID: reporter, Role: enums.RoleStudent}, row.ID)
	require.NoError(t, err)
	require.Equal(t, row.ID, view.ID)
}

func TestAssignSetsInRepair(t *testing.T) {
	maintainer := &models.User{ID: uuid.New(), Name: "Sam Ortiz"}
	row := &models.Maintenance{ID: uuid.New(), TicketNo: "MT1", Status: enums.MaintenanceStatusUnassigned}
	repo := &stubTicketRepo{byID: map[uuid.UUID]*models.Maintenance{row.ID: row}}
	users := &stubUserFinder{rows: map[uuid.UUID]*models.User{maintainer.ID: maintainer}}
	svc := newTestService(t, repo, &stubEquipmentStore{}, users)

	view, err := svc.Assign(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, AssignInput{MaintainerID: maintainer.ID})
	require.NoError(t, err)
	require.Equal(t, enums.MaintenanceStatusInRepair, view.Status)
	require.Equal(t, 50, view.Progress)
	require.Equal(t, "Sam Ortiz", view.MaintainerName)
}

func TestAssignUnknownMaintainer(t *testing.T) {
	row := &models.Maintenance{ID: uuid.New(), Status: enums.MaintenanceStatusUnassigned}
	repo := &stubTicketRepo{byID: map[uuid.UUID]*models.Maintenance{row.ID: row}}
	svc := newTestService(t, repo, &stubEquipmentStore{}, nil)

	_, err := svc.Assign(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, AssignInput{MaintainerID: uuid.New()})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCompleteRestoresEquipment(t *testing.T) {
	equip := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusUnderRepair}
	row := &models.Maintenance{ID: uuid.New(), TicketNo: "MT2", EquipmentID: equip.ID, Status: enums.MaintenanceStatusInRepair}
	repo := &stubTicketRepo{byID: map[uuid.UUID]*models.Maintenance{row.ID: row}}
	store := &stubEquipmentStore{rows: map[uuid.UUID]*models.Equipment{equip.ID: equip}}
	svc := newTestService(t, repo, store, nil)

	view, err := svc.Complete(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, CompleteInput{
		RepairDescription: "replaced the failed capacitor bank and retested",
	})
	require.NoError(t, err)
	require.Equal(t, enums.MaintenanceStatusCompleted, view.Status)
	require.Equal(t, 100, view.Progress)
	require.NotNil(t, view.ActualCompletion)
	require.Equal(t, enums.EquipmentStatusRunning, equip.Status)
}

func TestCompleteRejectsShortRepairDescription(t *testing.T) {
	row := &models.Maintenance{ID: uuid.New(), Status: enums.MaintenanceStatusInRepair}
	repo := &stubTicketRepo{byID: map[uuid.UUID]*models.Maintenance{row.ID: row}}
	svc := newTestService(t, repo, &stubEquipmentStore{}, nil)

	_, err := svc.Complete(context.Background(), audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, row.ID, CompleteInput{RepairDescription: "fixed"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestStatsGroupsCounters(t *testing.T) {
	repo := &stubTicketRepo{counts: StatusCounts{Unassigned: 2, InRepair: 3, Completed: 4, Total: 9}}
	svc := newTestService(t, repo, &stubEquipmentStore{}, nil)

	result, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Unassigned)
	require.Equal(t, int64(3), result.InRepair)
	require.Equal(t, int64(4), result.Completed)
	require.Equal(t, int64(9), result.Total)
}
