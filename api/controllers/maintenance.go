package controllers

import (
	"net/http"
	"time"

	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/maintenance"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createMaintenanceRequest struct {
	EquipmentID      string  `json:"equipment_id" validate:"required,uuid"`
	FaultDescription string  `json:"fault_description" validate:"required,min=10,max=500"`
	FaultType        string  `json:"fault_type,omitempty" validate:"omitempty,oneof=hardware software misuse degradation other"`
	Priority         string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Urgency          string  `json:"urgency,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ContactPhone     *string `json:"contact_phone,omitempty" validate:"omitempty,max=20"`
}

// CreateMaintenance reports a fault and opens a ticket.
func CreateMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipmentID, err := uuid.Parse(req.EquipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment_id"))
			return
		}

		view, err := svc.Create(r.Context(), actorFromRequest(r), maintenance.CreateInput{
			EquipmentID:  equipmentID,
			FaultDesc:    req.FaultDescription,
			FaultType:    enums.FaultType(req.FaultType),
			Priority:     enums.Priority(req.Priority),
			Urgency:      enums.Priority(req.Urgency),
			ContactPhone: req.ContactPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListMaintenance returns one filtered page of tickets scoped to the caller.
func ListMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.List(r.Context(), actorFromRequest(r), maintenance.ListParams{
			Status:        query.Get("status"),
			Priority:      query.Get("priority"),
			Urgency:       query.Get("urgency"),
			FaultType:     query.Get("fault_type"),
			TicketNo:      query.Get("ticket_no"),
			EquipmentName: query.Get("equipment_name"),
			Pagination:    page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetMaintenance returns one ticket.
func GetMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), actorFromRequest(r), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type updateMaintenanceRequest struct {
	FaultDescription  *string `json:"fault_description,omitempty" validate:"omitempty,min=10,max=500"`
	FaultType         *string `json:"fault_type,omitempty" validate:"omitempty,oneof=hardware software misuse degradation other"`
	RepairDescription *string `json:"repair_description,omitempty" validate:"omitempty,max=1000"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=unassigned in_repair pending_acceptance completed closed"`
	Priority          *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Urgency           *string `json:"urgency,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ContactPhone      *string `json:"contact_phone,omitempty" validate:"omitempty,max=20"`
}

// UpdateMaintenance applies a partial update to a ticket.
func UpdateMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := maintenance.UpdateInput{
			FaultDescription:  req.FaultDescription,
			RepairDescription: req.RepairDescription,
			ContactPhone:      req.ContactPhone,
		}
		if req.FaultType != nil {
			faultType := enums.FaultType(*req.FaultType)
			input.FaultType = &faultType
		}
		if req.Status != nil {
			status := enums.MaintenanceStatus(*req.Status)
			input.Status = &status
		}
		if req.Priority != nil {
			priority := enums.Priority(*req.Priority)
			input.Priority = &priority
		}
		if req.Urgency != nil {
			urgency := enums.Priority(*req.Urgency)
			input.Urgency = &urgency
		}

		view, err := svc.Update(r.Context(), actorFromRequest(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type assignMaintenanceRequest struct {
	MaintainerID        string  `json:"maintainer_id" validate:"required,uuid"`
	EstimatedCompletion *string `json:"estimated_completion,omitempty"`
}

// AssignMaintenance hands a ticket to a maintainer.
func AssignMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		maintainerID, err := uuid.Parse(req.MaintainerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid maintainer_id"))
			return
		}

		input := maintenance.AssignInput{MaintainerID: maintainerID}
		if req.EstimatedCompletion != nil {
			estimate, err := time.Parse(time.RFC3339, *req.EstimatedCompletion)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "estimated_completion must be an RFC3339 timestamp"))
				return
			}
			input.EstimatedCompletion = &estimate
		}

		view, err := svc.Assign(r.Context(), actorFromRequest(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type completeMaintenanceRequest struct {
	RepairDescription string  `json:"repair_description" validate:"required,min=10,max=1000"`
	Cost              *string `json:"cost,omitempty"`
}

// CompleteMaintenance records the repair outcome and closes out the ticket.
func CompleteMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req completeMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := maintenance.CompleteInput{RepairDescription: req.RepairDescription}
		if req.Cost != nil {
			cost, err := decimal.NewFromString(*req.Cost)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "cost must be a decimal number"))
				return
			}
			input.Cost = &cost
		}

		view, err := svc.Complete(r.Context(), actorFromRequest(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// MaintenanceStats returns the public ticket counters.
func MaintenanceStats(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
