package users

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
)

// UserView is the serialized user shape. The password hash never leaves the
// service layer.
type UserView struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Role        enums.Role `json:"role"`
	Department  *string    `json:"department,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Remark      *string    `json:"remark,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toView(user *models.User) *UserView {
	if user == nil {
		return nil
	}
	return &UserView{
		ID:          user.ID,
		Username:    user.Username,
		Name:        user.Name,
		Role:        user.Role,
		Department:  user.Department,
		Email:       user.Email,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		Remark:      user.Remark,
		CreatedAt:   user.CreatedAt,
	}
}

// ListParams filters the user listing.
type ListParams struct {
	Search     string
	Role       string
	Department string
	IsActive   *bool
	Pagination pkgpagination.Params
}

// ListResult is one page of users.
type ListResult struct {
	Users      []UserView         `json:"users"`
	Pagination pkgpagination.Meta `json:"pagination"`
}

// StatsResult rolls up active users per role.
type StatsResult struct {
	Total  int64       `json:"total"`
	ByRole []RoleCount `json:"by_role"`
}

// CreateInput holds the fields an admin supplies for a new user.
type CreateInput struct {
	Username   string
	Password   string
	Name       string
	Role       enums.Role
	Department *string
	Email      *string
	Phone      *string
	Remark     *string
}

// UpdateInput holds the optional fields of an admin user update.
type UpdateInput struct {
	Name       *string
	Role       *enums.Role
	Department *string
	Email      *string
	Phone      *string
	Remark     *string
}

// ProfileInput holds the fields a user may edit on their own profile.
type ProfileInput struct {
	Name  *string
	Email *string
	Phone *string
}

// ResetPasswordResult returns the generated temporary password exactly once.
type ResetPasswordResult struct {
	TempPassword string `json:"temp_password,omitempty"`
}
