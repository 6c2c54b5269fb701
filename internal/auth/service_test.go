package auth

import (
	"context"
	"testing"
	"time"

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

// weak parameters keep the hashing tests fast
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test1234",
		Issuer:            "equiptrack-test",
		ExpirationMinutes: 30,
	}
}

type stubUserRepo struct {
	byUsername map[string]*models.User
	byID       map[uuid.UUID]*models.User
	taken      map[string]bool
	created    []*models.User
	updated    []*models.User
	lastLogin  []uuid.UUID
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

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if row, ok := s.byUsername[username]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	return s.taken[username], nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.updated = append(s.updated, user)
	return nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.lastLogin = append(s.lastLogin, id)
	return nil
}

type stubSessionManager struct {
	registered []string
	revoked    []string
}

func (s *stubSessionManager) Register(_ context.Context, accessID string) error {
	s.registered = append(s.registered, accessID)
	return nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager, *recordingAudit) {
	t.Helper()
	sessions := &stubSessionManager{}
	rec := &recordingAudit{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		Recorder:       rec,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc, sessions, rec
}

func activeUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Name:         "Pat Doe",
		Role:         enums.RoleStudent,
		IsActive:     true,
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, rec := newTestService(t, &stubUserRepo{})

	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "invalid credentials", typed.Message())

	require.Len(t, rec.entries, 1)
	require.Equal(t, "login", rec.entries[0].Action)
	require.Nil(t, rec.entries[0].UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser(t, "pdoe", "correct-horse")
	repo := &stubUserRepo{byUsername: map[string]*models.User{user.Username: user}}
	svc, sessions, rec := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Username: "pdoe", Password: "wrong-horse"})
	require.Error(t, err)
	require.Equal(t, "invalid credentials", pkgerrors.As(err).Message())

	require.Empty(t, sessions.registered)
	require.Len(t, rec.entries, 1)
	require.NotNil(t, rec.entries[0].UserID)
	require.Equal(t, user.ID, *rec.entries[0].UserID)
}

func TestLoginFrozenAccount(t *testing.T) {
	user := activeUser(t, "pdoe", "correct-horse")
	user.IsActive = false
	repo := &stubUserRepo{byUsername: map[string]*models.User{user.Username: user}}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Username: "pdoe", Password: "correct-horse"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Contains(t, pkgerrors.As(err).Message(), "frozen")
}

func TestLoginMintsTokenAndRegistersSession(t *testing.T) {
	user := activeUser(t, "pdoe", "correct-horse")
	repo := &stubUserRepo{byUsername: map[string]*models.User{user.Username: user}}
	svc, sessions, rec := newTestService(t, repo)

	// handles arrive normalized regardless of the caller's casing
	result, err := svc.Login(context.Background(), LoginInput{Username: "  PDoe ", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, user.ID, result.User.ID)
	require.Len(t, sessions.registered, 1)
	require.Equal(t, []uuid.UUID{user.ID}, repo.lastLogin)
	require.Len(t, rec.entries, 1)
}

func TestRegisterRestrictsRoles(t *testing.T) {
	svc, _, _ := newTestService(t, &stubUserRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "newadmin",
		Password: "secret123",
		Name:     "New Admin",
		Role:     enums.RoleAdmin,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &stubUserRepo{taken: map[string]bool{"pdoe": true}}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "pdoe",
		Password: "secret123",
		Name:     "Pat Doe",
		Role:     enums.RoleStudent,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Empty(t, repo.created)
}

func TestRegisterCreatesActiveUser(t *testing.T) {
	repo := &stubUserRepo{}
	svc, _, rec := newTestService(t, repo)

	view, err := svc.Register(context.Background(), RegisterInput{
		Username: "NStone",
		Password: "secret123",
		Name:     "Nat Stone",
		Role:     enums.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, "nstone", view.Username)
	require.Len(t, repo.created, 1)
	require.True(t, repo.created[0].IsActive)
	require.NotEqual(t, "secret123", repo.created[0].PasswordHash)
	require.Len(t, rec.entries, 1)
}

func TestCheckUsername(t *testing.T) {
	repo := &stubUserRepo{taken: map[string]bool{"pdoe": true}}
	svc, _, _ := newTestService(t, repo)

	available, err := svc.CheckUsername(context.Background(), "PDoe")
	require.NoError(t, err)
	require.False(t, available)

	available, err = svc.CheckUsername(context.Background(), "fresh")
	require.NoError(t, err)
	require.True(t, available)

	_, err = svc.CheckUsername(context.Background(), "   ")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions, rec := newTestService(t, &stubUserRepo{})

	err := svc.Logout(context.Background(), audit.Actor{ID: uuid.New()}, "access-123")
	require.NoError(t, err)
	require.Equal(t, []string{"access-123"}, sessions.revoked)
	require.Len(t, rec.entries, 1)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	user := activeUser(t, "pdoe", "correct-horse")
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{user.ID: user}}
	svc, _, _ := newTestService(t, repo)

	err := svc.ChangePassword(context.Background(), audit.Actor{ID: user.ID}, ChangePasswordInput{
		OldPassword: "not-it",
		NewPassword: "new-secret",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Empty(t, repo.updated)
}

func TestChangePasswordStoresNewHash(t *testing.T) {
	user := activeUser(t, "pdoe", "correct-horse")
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{user.ID: user}}
	svc, _, rec := newTestService(t, repo)

	err := svc.ChangePassword(context.Background(), audit.Actor{ID: user.ID}, ChangePasswordInput{
		OldPassword: "correct-horse",
		NewPassword: "new-secret",
	})
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)

	ok, err := security.VerifyPassword("new-secret", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rec.entries, 1)
}
