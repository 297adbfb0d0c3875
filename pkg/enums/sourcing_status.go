package enums

import "fmt"

// SourcingStatus describes whether a variant is currently being sourced.
type SourcingStatus string

const (
	SourcingStatusActive       SourcingStatus = "active"
	SourcingStatusPaused       SourcingStatus = "paused"
	SourcingStatusDiscontinued SourcingStatus = "discontinued"
)

var validSourcingStatuses = []SourcingStatus{
	SourcingStatusActive,
	SourcingStatusPaused,
	SourcingStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s SourcingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SourcingStatus.
func (s SourcingStatus) IsValid() bool {
	for _, candidate := range validSourcingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourcingStatus converts raw input into a SourcingStatus.
func ParseSourcingStatus(value string) (SourcingStatus, error) {
	for _, candidate := range validSourcingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sourcing status %q", value)
}
