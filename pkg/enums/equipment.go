package enums

import "fmt"

// EquipmentStatus tracks the operational state of a unit.
type EquipmentStatus string

const (
	EquipmentStatusRunning         EquipmentStatus = "running"
	EquipmentStatusUnderRepair     EquipmentStatus = "under_repair"
	EquipmentStatusPendingCleaning EquipmentStatus = "pending_cleaning"
	EquipmentStatusArchived        EquipmentStatus = "archived"
)

var validEquipmentStatuses = []EquipmentStatus{
	EquipmentStatusRunning,
	EquipmentStatusUnderRepair,
	EquipmentStatusPendingCleaning,
	EquipmentStatusArchived,
}

// String implements fmt.Stringer.
func (s EquipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EquipmentStatus.
func (s EquipmentStatus) IsValid() bool {
	for _, candidate := range validEquipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEquipmentStatus converts raw input into an EquipmentStatus.
func ParseEquipmentStatus(value string) (EquipmentStatus, error) {
	for _, candidate := range validEquipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment status %q", value)
}

// EquipmentCategory groups units by their primary use.
type EquipmentCategory string

const (
	EquipmentCategoryTeaching EquipmentCategory = "teaching"
	EquipmentCategoryResearch EquipmentCategory = "research"
	EquipmentCategoryOffice   EquipmentCategory = "office"
)

var validEquipmentCategories = []EquipmentCategory{
	EquipmentCategoryTeaching,
	EquipmentCategoryResearch,
	EquipmentCategoryOffice,
}

// String implements fmt.Stringer.
func (c EquipmentCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known EquipmentCategory.
func (c EquipmentCategory) IsValid() bool {
	for _, candidate := range validEquipmentCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseEquipmentCategory converts raw input into an EquipmentCategory.
func ParseEquipmentCategory(value string) (EquipmentCategory, error) {
	for _, candidate := range validEquipmentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment category %q", value)
}

// ActivateConfirmation is the condition reported when restoring an archived
// unit to service.
type ActivateConfirmation string

const (
	ActivateConfirmationNormal           ActivateConfirmation = "normal"
	ActivateConfirmationNeedsRepair      ActivateConfirmation = "needs_repair"
	ActivateConfirmationNeedsReplacement ActivateConfirmation = "needs_replacement"
)

var validActivateConfirmations = []ActivateConfirmation{
	ActivateConfirmationNormal,
	ActivateConfirmationNeedsRepair,
	ActivateConfirmationNeedsReplacement,
}

// IsValid reports whether the value is a known ActivateConfirmation.
func (a ActivateConfirmation) IsValid() bool {
	for _, candidate := range validActivateConfirmations {
		if candidate == a {
			return true
		}
	}
	return false
}

// TargetStatus maps the reported condition to the status the unit re-enters
// service with. Anything short of normal goes back under repair.
func (a ActivateConfirmation) TargetStatus() EquipmentStatus {
	if a == ActivateConfirmationNormal {
		return EquipmentStatusRunning
	}
	return EquipmentStatusUnderRepair
}
