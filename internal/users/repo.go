package users

import (
	"context"
	"strings"
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a user repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername loads a user by their lowercased username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "username = ?", strings.ToLower(username)).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether the username already exists.
func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", strings.ToLower(username)).
		Count(&count).Error
	return count > 0, err
}

// EmailTaken reports whether another user already holds the email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

type listQuery struct {
	search     string
	role       enums.Role
	department string
	isActive   *bool
	limit      int
	offset     int
}

// List returns users newest first, with the total matching count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if opts.search != "" {
		needle := "%" + opts.search + "%"
		query = query.Where("username ILIKE ? OR name ILIKE ?", needle, needle)
	}
	if opts.role != "" {
		query = query.Where("role = ?", opts.role)
	}
	if opts.department != "" {
		query = query.Where("department = ?", opts.department)
	}
	if opts.isActive != nil {
		query = query.Where("is_active = ?", *opts.isActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	err := query.
		Order("created_at DESC").
		Limit(opts.limit).
		Offset(opts.offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists the full user row.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// UpdateLastLogin stamps the most recent successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// RoleCount is one row of the per-role active user rollup.
type RoleCount struct {
	Role  enums.Role `json:"role"`
	Count int64      `json:"count"`
}

// CountActiveByRole rolls up active users per role.
func (r *Repository) CountActiveByRole(ctx context.Context) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("role").
		Scan(&rows).Error
	return rows, err
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error
	return total, err
}
