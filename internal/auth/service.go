package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	pkgAuth "github.com/campuslabs/equiptrack-backend/pkg/auth"
	"github.com/campuslabs/equiptrack-backend/pkg/auth/session"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*SessionUser, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	Logout(ctx context.Context, actor audit.Actor, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*SessionUser, error)
	ChangePassword(ctx context.Context, actor audit.Actor, input ChangePasswordInput) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Register(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	users       userRepository
	session     sessionManager
	recorder    audit.Recorder
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Recorder       audit.Recorder
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		recorder:    params.Recorder,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.auditLoginFailure(ctx, input.Meta, nil, fmt.Sprintf("login failed for %q: unknown user", username))
			return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		s.auditLoginFailure(ctx, input.Meta, &user.ID, fmt.Sprintf("login failed for %q: wrong password", username))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCredentialsMessage)
	}

	if !user.IsActive {
		s.auditLoginFailure(ctx, input.Meta, &user.ID, fmt.Sprintf("login failed for %q: account frozen", username))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account is frozen, contact an administrator")
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	if err := s.session.Register(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}

	actor := audit.Actor{ID: user.ID, Role: user.Role, Meta: input.Meta}
	s.recorder.Record(ctx, actor.Entry("login", "auth", fmt.Sprintf("user %s logged in", user.Username)))

	return &LoginResult{
		Token: token,
		User:  toSessionUser(user),
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*SessionUser, error) {
	if input.Role != enums.RoleStudent && input.Role != enums.RoleTeacher {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be student or teacher")
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		Department:   input.Department,
		Email:        input.Email,
		Phone:        input.Phone,
		IsActive:     true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	actor := audit.Actor{ID: created.ID, Role: created.Role, Meta: input.Meta}
	s.recorder.Record(ctx, actor.Entry("create", "auth", fmt.Sprintf("registered user %s (%s)", created.Username, created.Role)))

	view := toSessionUser(created)
	return &view, nil
}

func (s *service) CheckUsername(ctx context.Context, username string) (bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(username))
	if trimmed == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	taken, err := s.users.UsernameTaken(ctx, trimmed)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	return !taken, nil
}

func (s *service) Logout(ctx context.Context, actor audit.Actor, sessionID string) error {
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	s.recorder.Record(ctx, actor.Entry("logout", "auth", "user logged out"))
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*SessionUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	view := toSessionUser(user)
	return &view, nil
}

func (s *service) ChangePassword(ctx context.Context, actor audit.Actor, input ChangePasswordInput) error {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "session user no longer exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ok, err := security.VerifyPassword(input.OldPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store password")
	}

	s.recorder.Record(ctx, actor.Entry("update", "auth", "changed own password"))
	return nil
}

func (s *service) auditLoginFailure(ctx context.Context, meta audit.RequestMeta, userID *uuid.UUID, description string) {
	entry := audit.Entry{
		Action:      "login",
		Module:      "auth",
		Description: description,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	entry.UserID = userID
	s.recorder.Record(ctx, entry)
}

func toSessionUser(user *models.User) SessionUser {
	return SessionUser{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Email:      user.Email,
		Phone:      user.Phone,
	}
}
