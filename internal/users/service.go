package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/campuslabs/equiptrack-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 10

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, opts listQuery) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveByRole(ctx context.Context) ([]RoleCount, error)
	Count(ctx context.Context) (int64, error)
}

// Service exposes admin user management plus self-service profile edits.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Stats(ctx context.Context) (*StatsResult, error)
	Get(ctx context.Context, id uuid.UUID) (*UserView, error)
	Create(ctx context.Context, actor audit.Actor, input CreateInput) (*UserView, error)
	Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*UserView, error)
	UpdateProfile(ctx context.Context, actor audit.Actor, input ProfileInput) (*UserView, error)
	Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error
	SetStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, active bool) (*UserView, error)
	ResetPassword(ctx context.Context, actor audit.Actor, id uuid.UUID, newPassword string) (*ResetPasswordResult, error)
}

type service struct {
	repo        userRepository
	recorder    audit.Recorder
	passwordCfg config.PasswordConfig
}

// NewService builds a user management service.
func NewService(repo userRepository, recorder audit.Recorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, recorder: recorder, passwordCfg: passwordCfg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	var role enums.Role
	if params.Role != "" {
		parsed, err := enums.ParseRole(params.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
		}
		role = parsed
	}

	rows, total, err := s.repo.List(ctx, listQuery{
		search:     strings.TrimSpace(params.Search),
		role:       role,
		department: strings.TrimSpace(params.Department),
		isActive:   params.IsActive,
		limit:      page.Limit,
		offset:     page.Offset(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	views := make([]UserView, 0, len(rows))
	for i := range rows {
		views = append(views, *toView(&rows[i]))
	}

	return &ListResult{
		Users:      views,
		Pagination: pkgpagination.MetaFor(page, total),
	}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsResult, error) {
	byRole, err := s.repo.CountActiveByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users by role")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	return &StatsResult{Total: total, ByRole: byRole}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(user), nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (*UserView, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	}

	if input.Email != nil && *input.Email != "" {
		emailTaken, err := s.repo.EmailTaken(ctx, *input.Email, uuid.Nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if emailTaken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
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
		Remark:       input.Remark,
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.recorder.Record(ctx, actor.Entry("create", "user", fmt.Sprintf("created user %s (%s)", created.Username, created.Role)))
	return toView(created), nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateInput) (*UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		if user.ID == actor.ID && *input.Role != user.Role {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own role")
		}
		user.Role = *input.Role
	}

	if input.Email != nil && *input.Email != "" {
		taken, err := s.repo.EmailTaken(ctx, *input.Email, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		user.Email = input.Email
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Department != nil {
		user.Department = input.Department
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Remark != nil {
		user.Remark = input.Remark
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}

	s.recorder.Record(ctx, actor.Entry("update", "user", fmt.Sprintf("updated user %s", user.Username)))
	return toView(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, actor audit.Actor, input ProfileInput) (*UserView, error) {
	user, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != "" {
		taken, err := s.repo.EmailTaken(ctx, *input.Email, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		user.Email = input.Email
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}

	s.recorder.Record(ctx, actor.Entry("update", "user", "updated own profile"))
	return toView(user), nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	if id == actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete your own account")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete admin accounts")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}

	s.recorder.Record(ctx, actor.Entry("delete", "user", fmt.Sprintf("deleted user %s", user.Username)))
	return nil
}

func (s *service) SetStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, active bool) (*UserView, error) {
	if id == actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own status")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change admin account status")
	}

	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user status")
	}

	verb := "froze"
	if active {
		verb = "unfroze"
	}
	s.recorder.Record(ctx, actor.Entry("update", "user", fmt.Sprintf("%s user %s", verb, user.Username)))
	return toView(user), nil
}

func (s *service) ResetPassword(ctx context.Context, actor audit.Actor, id uuid.UUID, newPassword string) (*ResetPasswordResult, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.RoleAdmin && user.ID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot reset another admin's password")
	}

	result := &ResetPasswordResult{}
	password := newPassword
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
		result.TempPassword = generated
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset password")
	}

	s.recorder.Record(ctx, actor.Entry("update", "user", fmt.Sprintf("reset password for %s", user.Username)))
	return result, nil
}

func (s *service) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
