package maintenance

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketView is the serialized maintenance ticket shape.
type TicketView struct {
	ID                  uuid.UUID               `json:"id"`
	TicketNo            string                  `json:"ticket_no"`
	EquipmentID         uuid.UUID               `json:"equipment_id"`
	EquipmentNo         string                  `json:"equipment_no,omitempty"`
	EquipmentName       string                  `json:"equipment_name,omitempty"`
	ReporterID          uuid.UUID               `json:"reporter_id"`
	ReporterName        string                  `json:"reporter_name,omitempty"`
	MaintainerID        *uuid.UUID              `json:"maintainer_id,omitempty"`
	MaintainerName      string                  `json:"maintainer_name,omitempty"`
	FaultDescription    string                  `json:"fault_description"`
	FaultType           enums.FaultType         `json:"fault_type"`
	RepairDescription   *string                 `json:"repair_description,omitempty"`
	Status              enums.MaintenanceStatus `json:"status"`
	Progress            int                     `json:"progress"`
	Priority            enums.Priority          `json:"priority"`
	Urgency             enums.Priority          `json:"urgency"`
	ContactPhone        *string                 `json:"contact_phone,omitempty"`
	EstimatedCompletion *time.Time              `json:"estimated_completion,omitempty"`
	ActualCompletion    *time.Time              `json:"actual_completion,omitempty"`
	Cost                *decimal.Decimal        `json:"cost,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func toView(row *models.Maintenance) *TicketView {
	if row == nil {
		return nil
	}
	view := &TicketView{
		ID:                  row.ID,
		TicketNo:            row.TicketNo,
		EquipmentID:         row.EquipmentID,
		ReporterID:          row.ReporterID,
		MaintainerID:        row.MaintainerID,
		FaultDescription:    row.FaultDescription,
		FaultType:           row.FaultType,
		RepairDescription:   row.RepairDescription,
		Status:              row.Status,
		Progress:            row.Status.Progress(),
		Priority:            row.Priority,
		Urgency:             row.Urgency,
		ContactPhone:        row.ContactPhone,
		EstimatedCompletion: row.EstimatedCompletion,
		ActualCompletion:    row.ActualCompletion,
		Cost:                row.Cost,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if row.Equipment != nil {
		view.EquipmentNo = row.Equipment.EquipmentNo
		view.EquipmentName = row.Equipment.Name
	}
	if row.Reporter != nil {
		view.ReporterName = row.Reporter.Name
	}
	if row.Maintainer != nil {
		view.MaintainerName = row.Maintainer.Name
	}
	return view
}

// CreateInput reports a fault against a unit.
type CreateInput struct {
	EquipmentID  uuid.UUID
	FaultDesc    string
	FaultType    enums.FaultType
	Priority     enums.Priority
	Urgency      enums.Priority
	ContactPhone *string
}

// ListParams filters the ticket listing.
type ListParams struct {
	Status        string
	Priority      string
	Urgency       string
	FaultType     string
	TicketNo      string
	EquipmentName string
	Pagination    pkgpagination.Params
}

// ListResult is one page of tickets.
type ListResult struct {
	Tickets    []TicketView       `json:"tickets"`
	Pagination pkgpagination.Meta `json:"pagination"`
}

// UpdateInput holds the optional fields of a ticket update.
type UpdateInput struct {
	FaultDescription  *string
	FaultType         *enums.FaultType
	RepairDescription *string
	Status            *enums.MaintenanceStatus
	Priority          *enums.Priority
	Urgency           *enums.Priority
	ContactPhone      *string
}

// AssignInput hands a ticket to a maintainer.
type AssignInput struct {
	MaintainerID        uuid.UUID
	EstimatedCompletion *time.Time
}

// CompleteInput closes out the repair work.
type CompleteInput struct {
	RepairDescription string
	Cost              *decimal.Decimal
}

// StatsResult is the public ticket counter set.
type StatsResult struct {
	Unassigned int64 `json:"unassigned"`
	InRepair   int64 `json:"in_repair"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}
