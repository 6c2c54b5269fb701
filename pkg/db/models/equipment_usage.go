package models

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
)

// EquipmentUsage records one person using one unit for a span of time.
type EquipmentUsage struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentID uuid.UUID         `gorm:"column:equipment_id;type:uuid;not null;index"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Purpose     string            `gorm:"not null"`
	StartTime   time.Time         `gorm:"column:start_time;not null"`
	EndTime     *time.Time        `gorm:"column:end_time"`
	Status      enums.UsageStatus `gorm:"type:text;not null;default:'in_use'"`
	Notes       *string           `gorm:"column:notes"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Equipment *Equipment `gorm:"foreignKey:EquipmentID"`
	User      *User      `gorm:"foreignKey:UserID"`
}

func (EquipmentUsage) TableName() string {
	return "equipment_usages"
}
