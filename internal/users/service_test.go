package users

import (
	"context"
	"testing"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byID       map[uuid.UUID]*models.User
	taken      map[string]bool
	emailTaken map[string]bool
	created    []*models.User
	updated    []*models.User
	deleted    []uuid.UUID
	roleCounts []RoleCount
	total      int64
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	s.created = append(s.created, user)
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	return s.taken[username], nil
}

func (s *stubUserRepo) EmailTaken(_ context.Context, email string, _ uuid.UUID) (bool, error) {
	return s.emailTaken[email], nil
}

func (s *stubUserRepo) List(context.Context, listQuery) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.updated = append(s.updated, user)
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubUserRepo) CountActiveByRole(context.Context) ([]RoleCount, error) {
	return s.roleCounts, nil
}

func (s *stubUserRepo) Count(context.Context) (int64, error) {
	return s.total, nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo) (Service, *recordingAudit) {
	t.Helper()
	rec := &recordingAudit{}
	svc, err := NewService(repo, rec, testPasswordConfig())
	require.NoError(t, err)
	return svc, rec
}

func adminActor() audit.Actor {
	return audit.Actor{ID: uuid.New(), Role: enums.RoleAdmin}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	repo := &stubUserRepo{taken: map[string]bool{"pdoe": true}}
	svc, _ := newTestService(t, repo)

	_, err := svc.Create(context.Background(), adminActor(), CreateInput{
		Username: "PDoe",
		Password: "secret123",
		Name:     "Pat Doe",
		Role:     enums.RoleStudent,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Empty(t, repo.created)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	email := "pat@example.edu"
	repo := &stubUserRepo{emailTaken: map[string]bool{email: true}}
	svc, _ := newTestService(t, repo)

	_, err := svc.Create(context.Background(), adminActor(), CreateInput{
		Username: "pdoe",
		Password: "secret123",
		Name:     "Pat Doe",
		Role:     enums.RoleStudent,
		Email:    &email,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestUpdateForbidsChangingOwnRole(t *testing.T) {
	actor := adminActor()
	self := &models.User{ID: actor.ID, Username: "admin", Role: enums.RoleAdmin}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{self.ID: self}}
	svc, _ := newTestService(t, repo)

	student := enums.RoleStudent
	_, err := svc.Update(context.Background(), actor, self.ID, UpdateInput{Role: &student})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestDeleteGuards(t *testing.T) {
	actor := adminActor()
	otherAdmin := &models.User{ID: uuid.New(), Username: "root2", Role: enums.RoleAdmin}
	student := &models.User{ID: uuid.New(), Username: "pdoe", Role: enums.RoleStudent}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{
		otherAdmin.ID: otherAdmin,
		student.ID:    student,
	}}
	svc, rec := newTestService(t, repo)

	err := svc.Delete(context.Background(), actor, actor.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = svc.Delete(context.Background(), actor, otherAdmin.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = svc.Delete(context.Background(), actor, student.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{student.ID}, repo.deleted)
	require.Len(t, rec.entries, 1)
}

func TestSetStatusGuards(t *testing.T) {
	actor := adminActor()
	otherAdmin := &models.User{ID: uuid.New(), Username: "root2", Role: enums.RoleAdmin}
	student := &models.User{ID: uuid.New(), Username: "pdoe", Role: enums.RoleStudent, IsActive: true}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{
		otherAdmin.ID: otherAdmin,
		student.ID:    student,
	}}
	svc, _ := newTestService(t, repo)

	_, err := svc.SetStatus(context.Background(), actor, actor.ID, false)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.SetStatus(context.Background(), actor, otherAdmin.ID, false)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	view, err := svc.SetStatus(context.Background(), actor, student.ID, false)
	require.NoError(t, err)
	require.False(t, view.IsActive)
	require.False(t, student.IsActive)
}

func TestResetPasswordBlocksOtherAdmins(t *testing.T) {
	actor := adminActor()
	otherAdmin := &models.User{ID: uuid.New(), Username: "root2", Role: enums.RoleAdmin}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{otherAdmin.ID: otherAdmin}}
	svc, _ := newTestService(t, repo)

	_, err := svc.ResetPassword(context.Background(), actor, otherAdmin.ID, "")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestResetPasswordGeneratesTempCredential(t *testing.T) {
	actor := adminActor()
	student := &models.User{ID: uuid.New(), Username: "pdoe", Role: enums.RoleStudent}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{student.ID: student}}
	svc, rec := newTestService(t, repo)

	result, err := svc.ResetPassword(context.Background(), actor, student.ID, "")
	require.NoError(t, err)
	require.Len(t, result.TempPassword, tempPasswordLength)

	ok, err := security.VerifyPassword(result.TempPassword, student.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rec.entries, 1)
}

func TestResetPasswordHonorsExplicitValue(t *testing.T) {
	actor := adminActor()
	student := &models.User{ID: uuid.New(), Username: "pdoe", Role: enums.RoleStudent}
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{student.ID: student}}
	svc, _ := newTestService(t, repo)

	result, err := svc.ResetPassword(context.Background(), actor, student.ID, "chosen-secret")
	require.NoError(t, err)
	require.Empty(t, result.TempPassword)

	ok, err := security.VerifyPassword("chosen-secret", student.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStatsAggregatesRoleCounts(t *testing.T) {
	repo := &stubUserRepo{
		roleCounts: []RoleCount{
			{Role: enums.RoleAdmin, Count: 1},
			{Role: enums.RoleStudent, Count: 41},
		},
		total: 42,
	}
	svc, _ := newTestService(t, repo)

	result, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), result.Total)
	require.Len(t, result.ByRole, 2)
}
