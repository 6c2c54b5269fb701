package controllers

import (
	"net/http"
	"strconv"

	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/users"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
)

// ListUsers returns one filtered page of accounts.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		params := users.ListParams{
			Search:     query.Get("search"),
			Role:       query.Get("role"),
			Department: query.Get("department"),
			Pagination: page,
		}
		if raw := query.Get("is_active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "is_active must be true or false"))
				return
			}
			params.IsActive = &active
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetUser returns one account.
func GetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type createUserRequest struct {
	Username   string  `json:"username" validate:"required,alphanum,min=4,max=20"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
	Name       string  `json:"name" validate:"required,min=2,max=50"`
	Role       string  `json:"role" validate:"required,oneof=admin teacher student"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Remark     *string `json:"remark,omitempty" validate:"omitempty,max=200"`
}

// CreateUser provisions an account with any role.
func CreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), actorFromRequest(r), users.CreateInput{
			Username:   req.Username,
			Password:   req.Password,
			Name:       req.Name,
			Role:       enums.Role(req.Role),
			Department: req.Department,
			Email:      req.Email,
			Phone:      req.Phone,
			Remark:     req.Remark,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type updateUserRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin teacher student"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Remark     *string `json:"remark,omitempty" validate:"omitempty,max=200"`
}

// UpdateUser applies a partial admin update to an account.
func UpdateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := users.UpdateInput{
			Name:       req.Name,
			Department: req.Department,
			Email:      req.Email,
			Phone:      req.Phone,
			Remark:     req.Remark,
		}
		if req.Role != nil {
			role := enums.Role(*req.Role)
			input.Role = &role
		}

		view, err := svc.Update(r.Context(), actorFromRequest(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type updateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// UpdateProfile lets the caller edit their own profile fields.
func UpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateProfile(r.Context(), actorFromRequest(r), users.ProfileInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// DeleteUser removes a non-admin account.
func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorFromRequest(r), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type setUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SetUserStatus freezes or unfreezes an account.
func SetUserStatus(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setUserStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetStatus(r.Context(), actorFromRequest(r), id, *req.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password,omitempty" validate:"omitempty,min=6,max=72"`
}

// ResetUserPassword sets or generates a new password for an account.
func ResetUserPassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// body is optional; with none supplied a temp password is generated
		var req resetPasswordRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.ResetPassword(r.Context(), actorFromRequest(r), id, req.NewPassword)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UserStats rolls up active account counts per role.
func UserStats(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListSystemLogs returns one filtered page of audit entries.
func ListSystemLogs(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.List(r.Context(), audit.ListParams{
			Action:     query.Get("action"),
			Module:     query.Get("module"),
			UserID:     query.Get("user_id"),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
