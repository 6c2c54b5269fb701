package reservations

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ReservationView is the serialized reservation shape.
type ReservationView struct {
	ID            uuid.UUID               `json:"id"`
	EquipmentID   uuid.UUID               `json:"equipment_id"`
	EquipmentNo   string                  `json:"equipment_no,omitempty"`
	EquipmentName string                  `json:"equipment_name,omitempty"`
	UserID        uuid.UUID               `json:"user_id"`
	UserName      string                  `json:"user_name,omitempty"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
	Purpose       string                  `json:"purpose"`
	Status        enums.ReservationStatus `json:"status"`
	ApprovedBy    *uuid.UUID              `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time              `json:"approved_at,omitempty"`
	RejectReason  *string                 `json:"reject_reason,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func toView(row *models.Reservation) *ReservationView {
	if row == nil {
		return nil
	}
	view := &ReservationView{
		ID:           row.ID,
		EquipmentID:  row.EquipmentID,
		UserID:       row.UserID,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		Purpose:      row.Purpose,
		Status:       row.Status,
		ApprovedBy:   row.ApprovedBy,
		ApprovedAt:   row.ApprovedAt,
		RejectReason: row.RejectReason,
		CreatedAt:    row.CreatedAt,
	}
	if row.Equipment != nil {
		view.EquipmentNo = row.Equipment.EquipmentNo
		view.EquipmentName = row.Equipment.Name
	}
	if row.User != nil {
		view.UserName = row.User.Name
	}
	return view
}

// CreateInput describes a reservation request.
type CreateInput struct {
	EquipmentID uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	Purpose     string
}

// ListParams filters the reservation listing.
type ListParams struct {
	Status     string
	Pagination pkgpagination.Params
}

// ListResult is one page of reservations.
type ListResult struct {
	Reservations []ReservationView  `json:"reservations"`
	Pagination   pkgpagination.Meta `json:"pagination"`
}

// ReviewAction is the approver's decision on a pending reservation.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ReviewInput carries an approval or rejection.
type ReviewInput struct {
	Action       ReviewAction
	RejectReason string
}

// Slot is one bookable hour of a day.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// OccupiedWindow is a reserved span shown alongside the slot grid.
type OccupiedWindow struct {
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Status    enums.ReservationStatus `json:"status"`
}

// SlotsResult is the availability grid for one unit on one day.
type SlotsResult struct {
	EquipmentID uuid.UUID        `json:"equipment_id"`
	Date        string           `json:"date"`
	Slots       []Slot           `json:"slots"`
	Occupied    []OccupiedWindow `json:"occupied"`
}
