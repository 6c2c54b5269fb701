package enums

import "fmt"

// UsageStatus tracks an equipment usage record.
type UsageStatus string

const (
	UsageStatusInUse     UsageStatus = "in_use"
	UsageStatusCompleted UsageStatus = "completed"
)

var validUsageStatuses = []UsageStatus{
	UsageStatusInUse,
	UsageStatusCompleted,
}

// String implements fmt.Stringer.
func (s UsageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UsageStatus.
func (s UsageStatus) IsValid() bool {
	for _, candidate := range validUsageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUsageStatus converts raw input into a UsageStatus.
func ParseUsageStatus(value string) (UsageStatus, error) {
	for _, candidate := range validUsageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid usage status %q", value)
}
