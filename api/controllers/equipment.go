package controllers

import (
	"net/http"
	"time"

	"github.com/campuslabs/equiptrack-backend/api/responses"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/equipment"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type createEquipmentRequest struct {
	EquipmentNo  string  `json:"equipment_no" validate:"required,min=2,max=50"`
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Model        string  `json:"model" validate:"required,min=1,max=100"`
	PurchaseDate string  `json:"purchase_date" validate:"required"`
	Location     string  `json:"location" validate:"required,min=1,max=100"`
	Category     string  `json:"category" validate:"required,oneof=teaching research office"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Value        *string `json:"value,omitempty"`
}

// CreateEquipment registers a new unit.
func CreateEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEquipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "purchase_date must be a date (YYYY-MM-DD)"))
			return
		}

		input := equipment.CreateInput{
			EquipmentNo:  req.EquipmentNo,
			Name:         req.Name,
			Model:        req.Model,
			PurchaseDate: purchaseDate,
			Location:     req.Location,
			Category:     enums.EquipmentCategory(req.Category),
			Description:  req.Description,
		}
		if req.Value != nil {
			value, err := decimal.NewFromString(*req.Value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "value must be a decimal number"))
				return
			}
			input.Value = &value
		}

		view, err := svc.Create(r.Context(), actorFromRequest(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListEquipment returns one filtered page of units.
func ListEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.List(r.Context(), equipment.ListParams{
			EquipmentNo: query.Get("equipment_no"),
			Search:      query.Get("search"),
			Status:      query.Get("status"),
			Category:    query.Get("category"),
			Location:    query.Get("location"),
			Pagination:  page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetEquipment returns one unit with its usage history.
func GetEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
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

type updateEquipmentRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Model        *string `json:"model,omitempty" validate:"omitempty,min=1,max=100"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	Location     *string `json:"location,omitempty" validate:"omitempty,min=1,max=100"`
	Category     *string `json:"category,omitempty" validate:"omitempty,oneof=teaching research office"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=running under_repair pending_cleaning archived"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Value        *string `json:"value,omitempty"`
}

// UpdateEquipment applies a partial update to a unit.
func UpdateEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateEquipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := equipment.UpdateInput{
			Name:        req.Name,
			Model:       req.Model,
			Location:    req.Location,
			Description: req.Description,
		}
		if req.PurchaseDate != nil {
			purchaseDate, err := time.Parse("2006-01-02", *req.PurchaseDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "purchase_date must be a date (YYYY-MM-DD)"))
				return
			}
			input.PurchaseDate = &purchaseDate
		}
		if req.Category != nil {
			category := enums.EquipmentCategory(*req.Category)
			input.Category = &category
		}
		if req.Status != nil {
			status := enums.EquipmentStatus(*req.Status)
			input.Status = &status
		}
		if req.Value != nil {
			value, err := decimal.NewFromString(*req.Value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "value must be a decimal number"))
				return
			}
			input.Value = &value
		}

		view, err := svc.Update(r.Context(), actorFromRequest(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// DeleteEquipment removes a unit that has no usage history.
func DeleteEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
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

type archiveEquipmentRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=200"`
	Note   string `json:"note" validate:"required,min=5,max=300"`
	Period string `json:"period" validate:"required,min=1,max=50"`
}

// ArchiveEquipment takes a unit out of service.
func ArchiveEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req archiveEquipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Archive(r.Context(), actorFromRequest(r), id, equipment.ArchiveInput{
			Reason: req.Reason,
			Note:   req.Note,
			Period: req.Period,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type activateEquipmentRequest struct {
	Reason       string `json:"reason" validate:"required,min=5,max=200"`
	Confirmation string `json:"confirmation" validate:"required,oneof=normal needs_repair needs_replacement"`
}

// ActivateEquipment restores an archived unit to service.
func ActivateEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req activateEquipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Activate(r.Context(), actorFromRequest(r), id, equipment.ActivateInput{
			Reason:       req.Reason,
			Confirmation: enums.ActivateConfirmation(req.Confirmation),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ExportEquipmentCSV streams the full inventory as a CSV download.
func ExportEquipmentCSV(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, filename, err := svc.ExportCSV(r.Context(), actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := doc.WriteHTTP(w, filename); err != nil && logg != nil {
			logg.Error(r.Context(), "export.write_failed", err)
		}
	}
}

// EquipmentStatistics returns one unit's usage summary.
func EquipmentStatistics(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Statistics(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
