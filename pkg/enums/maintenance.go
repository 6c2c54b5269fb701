package enums

import "fmt"

// MaintenanceStatus tracks a ticket through its lifecycle.
type MaintenanceStatus string

const (
	MaintenanceStatusUnassigned        MaintenanceStatus = "unassigned"
	MaintenanceStatusInRepair          MaintenanceStatus = "in_repair"
	MaintenanceStatusPendingAcceptance MaintenanceStatus = "pending_acceptance"
	MaintenanceStatusCompleted         MaintenanceStatus = "completed"
	MaintenanceStatusClosed            MaintenanceStatus = "closed"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusUnassigned,
	MaintenanceStatusInRepair,
	MaintenanceStatusPendingAcceptance,
	MaintenanceStatusCompleted,
	MaintenanceStatusClosed,
}

// String implements fmt.Stringer.
func (s MaintenanceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MaintenanceStatus.
func (s MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Progress returns the completion percentage shown for the status.
func (s MaintenanceStatus) Progress() int {
	switch s {
	case MaintenanceStatusInRepair:
		return 50
	case MaintenanceStatusPendingAcceptance:
		return 80
	case MaintenanceStatusCompleted, MaintenanceStatusClosed:
		return 100
	default:
		return 0
	}
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}

// FaultType classifies the reported failure.
type FaultType string

const (
	FaultTypeHardware    FaultType = "hardware"
	FaultTypeSoftware    FaultType = "software"
	FaultTypeMisuse      FaultType = "misuse"
	FaultTypeDegradation FaultType = "degradation"
	FaultTypeOther       FaultType = "other"
)

var validFaultTypes = []FaultType{
	FaultTypeHardware,
	FaultTypeSoftware,
	FaultTypeMisuse,
	FaultTypeDegradation,
	FaultTypeOther,
}

// String implements fmt.Stringer.
func (f FaultType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FaultType.
func (f FaultType) IsValid() bool {
	for _, candidate := range validFaultTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFaultType converts raw input into a FaultType.
func ParseFaultType(value string) (FaultType, error) {
	for _, candidate := range validFaultTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fault type %q", value)
}

// Priority ranks how quickly a ticket should be worked.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var validPriorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Priority.
func (p Priority) IsValid() bool {
	for _, candidate := range validPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriority converts raw input into a Priority.
func ParsePriority(value string) (Priority, error) {
	for _, candidate := range validPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q", value)
}
