package models

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
)

// Reservation books a unit for a future time window.
type Reservation struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentID  uuid.UUID               `gorm:"column:equipment_id;type:uuid;not null;index"`
	UserID       uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	StartTime    time.Time               `gorm:"column:start_time;not null"`
	EndTime      time.Time               `gorm:"column:end_time;not null"`
	Purpose      string                  `gorm:"not null"`
	Status       enums.ReservationStatus `gorm:"type:text;not null;default:'pending';index"`
	ApprovedBy   *uuid.UUID              `gorm:"column:approved_by;type:uuid"`
	ApprovedAt   *time.Time              `gorm:"column:approved_at"`
	RejectReason *string                 `gorm:"column:reject_reason"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	Equipment *Equipment `gorm:"foreignKey:EquipmentID"`
	User      *User      `gorm:"foreignKey:UserID"`
	Approver  *User      `gorm:"foreignKey:ApprovedBy"`
}
