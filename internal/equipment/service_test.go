package equipment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/usage"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubEquipmentRepo struct {
	byID    map[uuid.UUID]*models.Equipment
	taken   map[string]bool
	created []*models.Equipment
	deleted []uuid.UUID
	updated []*models.Equipment
	allRows []models.Equipment
}

func (s *stubEquipmentRepo) Create(_ context.Context, row *models.Equipment) (*models.Equipment, error) {
	row.ID = uuid.New()
	s.created = append(s.created, row)
	return row, nil
}

func (s *stubEquipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Equipment, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubEquipmentRepo) EquipmentNoTaken(_ context.Context, no string) (bool, error) {
	return s.taken[no], nil
}

func (s *stubEquipmentRepo) List(context.Context, listQuery) ([]models.Equipment, int64, error) {
	return s.allRows, int64(len(s.allRows)), nil
}

func (s *stubEquipmentRepo) ListAll(context.Context) ([]models.Equipment, error) {
	return s.allRows, nil
}

func (s *stubEquipmentRepo) Update(_ context.Context, row *models.Equipment) error {
	s.updated = append(s.updated, row)
	return nil
}

func (s *stubEquipmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubUsageReader struct {
	hasAny bool
	totals usage.UsageTotals
	recent []models.EquipmentUsage
}

func (s *stubUsageReader) ActiveForEquipment(context.Context, uuid.UUID) (*models.EquipmentUsage, error) {
	return nil, nil
}

func (s *stubUsageReader) RecentForEquipment(context.Context, uuid.UUID, int) ([]models.EquipmentUsage, error) {
	return s.recent, nil
}

func (s *stubUsageReader) TotalsForEquipment(context.Context, uuid.UUID) (*usage.UsageTotals, error) {
	return &s.totals, nil
}

func (s *stubUsageReader) HasAnyForEquipment(context.Context, uuid.UUID) (bool, error) {
	return s.hasAny, nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T, repo *stubEquipmentRepo, usages *stubUsageReader) (Service, *recordingAudit) {
	t.Helper()
	if usages == nil {
		usages = &stubUsageReader{}
	}
	rec := &recordingAudit{}
	svc, err := NewService(repo, usages, rec)
	require.NoError(t, err)
	return svc, rec
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	repo := &stubEquipmentRepo{taken: map[string]bool{"EQ-1001": true}}
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Create(context.Background(), audit.Actor{ID: uuid.New()}, CreateInput{
		EquipmentNo:  "EQ-1001",
		Name:         "Oscilloscope",
		Model:        "TDS-2024",
		PurchaseDate: time.Now(),
		Location:     "Lab 3",
		Category:     enums.EquipmentCategoryTeaching,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestDeleteRefusedWhenUsageExists(t *testing.T) {
	row := &models.Equipment{ID: uuid.New(), EquipmentNo: "EQ-1002", Status: enums.EquipmentStatusRunning}
	repo := &stubEquipmentRepo{byID: map[uuid.UUID]*models.Equipment{row.ID: row}}
	svc, _ := newTestService(t, repo, &stubUsageReader{hasAny: true})

	err := svc.Delete(context.Background(), audit.Actor{ID: uuid.New()}, row.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Empty(t, repo.deleted)
}

func TestArchiveAlreadyArchived(t *testing.T) {
	row := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusArchived}
	repo := &stubEquipmentRepo{byID: map[uuid.UUID]*models.Equipment{row.ID: row}}
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Archive(context.Background(), audit.Actor{ID: uuid.New()}, row.ID, ArchiveInput{
		Reason: "obsolete",
		Note:   "superseded by the new unit",
		Period: "permanent",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestArchiveValidatesNoteLength(t *testing.T) {
	row := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusRunning}
	repo := &stubEquipmentRepo{byID: map[uuid.UUID]*models.Equipment{row.ID: row}}
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Archive(context.Background(), audit.Actor{ID: uuid.New()}, row.ID, ArchiveInput{
		Reason: "obsolete",
		Note:   "old",
		Period: "permanent",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestActivateMapsConfirmationToStatus(t *testing.T) {
	cases := []struct {
		confirmation enums.ActivateConfirmation
		want         enums.EquipmentStatus
	}{
		{enums.ActivateConfirmationNormal, enums.EquipmentStatusRunning},
		{enums.ActivateConfirmationNeedsRepair, enums.EquipmentStatusUnderRepair},
		{enums.ActivateConfirmationNeedsReplacement, enums.EquipmentStatusUnderRepair},
	}
	for _, tc := range cases {
		row := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusArchived}
		repo := &stubEquipmentRepo{byID: map[uuid.UUID]*models.Equipment{row.ID: row}}
		svc, _ := newTestService(t, repo, nil)

		view, err := svc.Activate(context.Background(), audit.Actor{ID: uuid.New()}, row.ID, ActivateInput{
			Reason:       "needed again for the spring term",
			Confirmation: tc.confirmation,
		})
		require.NoError(t, err)
		require.Equal(t, tc.want, view.Status)
	}
}

func TestActivateOnlyFromArchived(t *testing.T) {
	row := &models.Equipment{ID: uuid.New(), Status: enums.EquipmentStatusRunning}
	repo := &stubEquipmentRepo{byID: map[uuid.UUID]*models.Equipment{row.ID: row}}
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Activate(context.Background(), audit.Actor{ID: uuid.New()}, row.ID, ActivateInput{
		Reason:       "needed again for the spring term",
		Confirmation: enums.ActivateConfirmationNormal,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestExportCSVNamesFileByDate(t *testing.T) {
	repo := &stubEquipmentRepo{allRows: []models.Equipment{{
		EquipmentNo:  "EQ-1003",
		Name:         "Spectrometer",
		Model:        "SP-9",
		PurchaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Location:     "Lab 1",
		Category:     enums.EquipmentCategoryResearch,
		Status:       enums.EquipmentStatusRunning,
	}}}
	svc, rec := newTestService(t, repo, nil)

	doc, filename, err := svc.ExportCSV(context.Background(), audit.Actor{ID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, "equipment_"+time.Now().UTC().Format("2006-01-02")+".csv", filename)
	require.Len(t, rec.entries, 1)

	body, err := doc.Bytes()
	require.NoError(t, err)
	text := string(body)
	require.True(t, strings.HasPrefix(text, "\xef\xbb\xbf"), "export must carry the UTF-8 BOM")
	require.Contains(t, text, "EQ-1003")
	require.Contains(t, text, "2024-03-01")
}
