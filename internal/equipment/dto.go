package equipment

import (
	"time"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActiveUsage summarizes the open usage session attached to a listed unit.
type ActiveUsage struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Purpose   string    `json:"purpose"`
	StartTime time.Time `json:"start_time"`
}

// UsageRecord is one historical usage row serialized with a unit.
type UsageRecord struct {
	ID        uuid.UUID         `json:"id"`
	UserName  string            `json:"user_name,omitempty"`
	Purpose   string            `json:"purpose"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Status    enums.UsageStatus `json:"status"`
}

// EquipmentView is the serialized unit shape.
type EquipmentView struct {
	ID           uuid.UUID               `json:"id"`
	EquipmentNo  string                  `json:"equipment_no"`
	Name         string                  `json:"name"`
	Model        string                  `json:"model"`
	PurchaseDate string                  `json:"purchase_date"`
	Location     string                  `json:"location"`
	Category     enums.EquipmentCategory `json:"category"`
	Status       enums.EquipmentStatus   `json:"status"`
	Description  *string                 `json:"description,omitempty"`
	Value        *decimal.Decimal        `json:"value,omitempty"`
	ArchivePath  *string                 `json:"archive_path,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	ActiveUsage  *ActiveUsage            `json:"active_usage,omitempty"`
	RecentUsages []UsageRecord           `json:"recent_usages,omitempty"`
}

func toView(row *models.Equipment) *EquipmentView {
	if row == nil {
		return nil
	}
	return &EquipmentView{
		ID:           row.ID,
		EquipmentNo:  row.EquipmentNo,
		Name:         row.Name,
		Model:        row.Model,
		PurchaseDate: row.PurchaseDate.Format("2006-01-02"),
		Location:     row.Location,
		Category:     row.Category,
		Status:       row.Status,
		Description:  row.Description,
		Value:        row.Value,
		ArchivePath:  row.ArchivePath,
		CreatedAt:    row.CreatedAt,
	}
}

// ListParams filters the equipment listing.
type ListParams struct {
	EquipmentNo string
	Search      string
	Status      string
	Category    string
	Location    string
	Pagination  pkgpagination.Params
}

// ListResult is one page of units.
type ListResult struct {
	Equipment  []EquipmentView    `json:"equipment"`
	Pagination pkgpagination.Meta `json:"pagination"`
}

// CreateInput holds the fields required for a new unit.
type CreateInput struct {
	EquipmentNo  string
	Name         string
	Model        string
	PurchaseDate time.Time
	Location     string
	Category     enums.EquipmentCategory
	Description  *string
	Value        *decimal.Decimal
}

// UpdateInput holds the optional fields of a unit update.
type UpdateInput struct {
	Name         *string
	Model        *string
	PurchaseDate *time.Time
	Location     *string
	Category     *enums.EquipmentCategory
	Status       *enums.EquipmentStatus
	Description  *string
	Value        *decimal.Decimal
}

// ArchiveInput records why a unit leaves service.
type ArchiveInput struct {
	Reason string
	Note   string
	Period string
}

// ArchiveResult echoes the archive details with the updated unit.
type ArchiveResult struct {
	Equipment  EquipmentView `json:"equipment"`
	Reason     string        `json:"reason"`
	Note       string        `json:"note"`
	Period     string        `json:"period"`
	ArchivedAt time.Time     `json:"archived_at"`
}

// ActivateInput restores an archived unit to service.
type ActivateInput struct {
	Reason       string
	Confirmation enums.ActivateConfirmation
}

// StatsResult summarizes the usage history of one unit.
type StatsResult struct {
	UsageCount   int64         `json:"usage_count"`
	TotalHours   float64       `json:"total_hours"`
	RecentUsages []UsageRecord `json:"recent_usages"`
}
