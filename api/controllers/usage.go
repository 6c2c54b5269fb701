package controllers

import (
	"net/http"

	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/usage"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
)

type startUsageRequest struct {
	Purpose string `json:"purpose" validate:"required,min=1,max=200"`
}

// StartUsage opens a usage session on a unit.
func StartUsage(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		equipmentID, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req startUsageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Start(r.Context(), actorFromRequest(r), usage.StartInput{
			EquipmentID: equipmentID,
			Purpose:     req.Purpose,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type finishUsageRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// FinishUsage closes an open usage session.
func FinishUsage(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usageID, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// notes are optional and so is the body itself
		var req finishUsageRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		view, err := svc.Finish(r.Context(), actorFromRequest(r), usage.FinishInput{
			UsageID: usageID,
			Notes:   req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
