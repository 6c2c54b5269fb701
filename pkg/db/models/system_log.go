package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemLog is an append-only audit record. Rows are never updated.
type SystemLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Action      string     `gorm:"not null"`
	Module      string     `gorm:"not null;index"`
	Description string     `gorm:"not null"`
	IPAddress   *string    `gorm:"column:ip_address"`
	UserAgent   *string    `gorm:"column:user_agent"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID"`
}
