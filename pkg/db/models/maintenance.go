package models

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Maintenance is a repair ticket raised against a unit.
type Maintenance struct {
	ID                  uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TicketNo            string                  `gorm:"column:ticket_no;type:text;not null;uniqueIndex"`
	EquipmentID         uuid.UUID               `gorm:"column:equipment_id;type:uuid;not null;index"`
	ReporterID          uuid.UUID               `gorm:"column:reporter_id;type:uuid;not null;index"`
	MaintainerID        *uuid.UUID              `gorm:"column:maintainer_id;type:uuid"`
	FaultDescription    string                  `gorm:"column:fault_description;not null"`
	FaultType           enums.FaultType         `gorm:"column:fault_type;type:text;not null;default:'other'"`
	RepairDescription   *string                 `gorm:"column:repair_description"`
	Status              enums.MaintenanceStatus `gorm:"type:text;not null;default:'unassigned';index"`
	Priority            enums.Priority          `gorm:"type:text;not null;default:'medium'"`
	Urgency             enums.Priority          `gorm:"type:text;not null;default:'medium'"`
	ContactPhone        *string                 `gorm:"column:contact_phone"`
	EstimatedCompletion *time.Time              `gorm:"column:estimated_completion"`
	ActualCompletion    *time.Time              `gorm:"column:actual_completion"`
	Cost                *decimal.Decimal        `gorm:"column:cost;type:numeric(10,2)"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	Equipment  *Equipment `gorm:"foreignKey:EquipmentID"`
	Reporter   *User      `gorm:"foreignKey:ReporterID"`
	Maintainer *User      `gorm:"foreignKey:MaintainerID"`
}

func (Maintenance) TableName() string {
	return "maintenances"
}
