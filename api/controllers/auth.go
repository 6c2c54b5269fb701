package controllers

import (
	"net/http"
	"time"

	"github.com/campuslabs/equiptrack-backend/api/middleware"
	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/auth"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,min=4,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Login authenticates credentials and installs the session cookie.
func Login(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginInput{
			Username: req.Username,
			Password: req.Password,
			Meta:     audit.MetaFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, jwtCfg, result.Token)
		responses.WriteSuccess(w, result)
	}
}

type registerRequest struct {
	Username   string  `json:"username" validate:"required,alphanum,min=4,max=20"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
	Name       string  `json:"name" validate:"required,min=2,max=50"`
	Role       string  `json:"role" validate:"required,oneof=student teacher"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// Register creates a self-service student or teacher account.
func Register(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), auth.RegisterInput{
			Username:   req.Username,
			Password:   req.Password,
			Name:       req.Name,
			Role:       enums.Role(req.Role),
			Department: req.Department,
			Email:      req.Email,
			Phone:      req.Phone,
			Meta:       audit.MetaFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

type checkUsernameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=20"`
}

// CheckUsername reports whether a username is still available.
func CheckUsername(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkUsernameRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := svc.CheckUsername(r.Context(), req.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"available": available})
	}
}

// Logout revokes the redis session and clears the cookie.
func Logout(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}

		if err := svc.Logout(r.Context(), actorFromRequest(r), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, jwtCfg)
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

// Me returns the authenticated user's identity.
func Me(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromRequest(r)
		user, err := svc.Me(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,min=6,max=72"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// ChangePassword rotates the caller's own password.
func ChangePassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.ChangePassword(r.Context(), actorFromRequest(r), auth.ChangePasswordInput{
			OldPassword: req.OldPassword,
			NewPassword: req.NewPassword,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "password changed"})
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.JWTConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
