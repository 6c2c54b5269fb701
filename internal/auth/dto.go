package auth

import (
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
)

// LoginInput carries the credentials plus the client metadata audited with
// the attempt.
type LoginInput struct {
	Username string
	Password string
	Meta     audit.RequestMeta
}

// SessionUser is the caller-visible identity attached to a session.
type SessionUser struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	Role       enums.Role `json:"role"`
	Department *string    `json:"department,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
}

// LoginResult bundles the minted token with the session identity. The
// controller decides how the token travels (cookie plus response body).
type LoginResult struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// RegisterInput holds self-service registration fields.
type RegisterInput struct {
	Username   string
	Password   string
	Name       string
	Role       enums.Role
	Department *string
	Email      *string
	Phone      *string
	Meta       audit.RequestMeta
}

// ChangePasswordInput holds a password rotation request for the actor.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}
