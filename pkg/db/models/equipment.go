package models

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Equipment is a single managed unit.
type Equipment struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentNo  string                  `gorm:"column:equipment_no;type:text;not null;uniqueIndex"`
	Name         string                  `gorm:"not null"`
	Model        string                  `gorm:"not null"`
	PurchaseDate time.Time               `gorm:"column:purchase_date;type:date;not null"`
	Location     string                  `gorm:"not null"`
	Category     enums.EquipmentCategory `gorm:"type:text;not null"`
	Status       enums.EquipmentStatus   `gorm:"type:text;not null;default:'running'"`
	Description  *string                 `gorm:"column:description"`
	Value        *decimal.Decimal        `gorm:"column:value;type:numeric(10,2)"`
	ArchivePath  *string                 `gorm:"column:archive_path"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the uncountable table name ("equipments" reads wrong).
func (Equipment) TableName() string {
	return "equipment"
}
