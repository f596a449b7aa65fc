package enums

import "fmt"

// ModuleStatus describes the runtime state reported for a platform module.
type ModuleStatus string

const (
	ModuleStatusRunning ModuleStatus = "running"
	ModuleStatusStopped ModuleStatus = "stopped"
	ModuleStatusLocked  ModuleStatus = "locked"
)

var validModuleStatuses = []ModuleStatus{
	ModuleStatusRunning,
	ModuleStatusStopped,
	ModuleStatusLocked,
}

// String implements fmt.Stringer.
func (m ModuleStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is known.
func (m ModuleStatus) IsValid() bool {
	for _, candidate := range validModuleStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseModuleStatus converts raw input into a ModuleStatus.
func ParseModuleStatus(value string) (ModuleStatus, error) {
	for _, candidate := range validModuleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid module status %q", value)
}
