package controllers

import (
	"net/http"
	"time"

	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/reservations"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/google/uuid"
)

type createReservationRequest struct {
	EquipmentID string `json:"equipment_id" validate:"required,uuid"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Purpose     string `json:"purpose" validate:"required,min=1,max=200"`
}

// CreateReservation books a time window on a unit.
func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipmentID, err := uuid.Parse(req.EquipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment_id"))
			return
		}
		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "start_time must be an RFC3339 timestamp"))
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "end_time must be an RFC3339 timestamp"))
			return
		}

		view, err := svc.Create(r.Context(), actorFromRequest(r), reservations.CreateInput{
			EquipmentID: equipmentID,
			StartTime:   start,
			EndTime:     end,
			Purpose:     req.Purpose,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListReservations returns one page of reservations scoped to the caller.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), actorFromRequest(r), reservations.ListParams{
			Status:     r.URL.Query().Get("status"),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type reviewReservationRequest struct {
	Action       string `json:"action" validate:"required,oneof=approve reject"`
	RejectReason string `json:"reject_reason,omitempty" validate:"omitempty,max=200"`
}

// ReviewReservation approves or rejects a pending reservation.
func ReviewReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reviewReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Review(r.Context(), actorFromRequest(r), id, reservations.ReviewInput{
			Action:       reservations.ReviewAction(req.Action),
			RejectReason: req.RejectReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CancelReservation lets the requester withdraw a pending reservation.
func CancelReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Cancel(r.Context(), actorFromRequest(r), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CompleteReservation closes an approved reservation whose window has ended.
func CompleteReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Complete(r.Context(), actorFromRequest(r), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// AvailableSlots returns the hourly availability grid for a unit on a date.
func AvailableSlots(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		equipmentID, err := uuidParam(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AvailableSlots(r.Context(), equipmentID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
