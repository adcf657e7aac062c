package schema

import "strings"

// ValidateServerID ensures a server id matches [a-z0-9._-] with no normalization.
func ValidateServerID(serverID ServerID) error {
	raw := string(serverID)
	if raw == "" {
		return ErrInvalidServer
	}
	if strings.TrimSpace(raw) != raw {
		return ErrInvalidServer
	}
	for _, r := range raw {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		return ErrInvalidServer
	}
	return nil
}

// ParseServerStatus maps a supervisor-reported status string onto the known
// enumeration, defaulting to error for anything unrecognized.
func ParseServerStatus(value string) ServerStatus {
	switch ServerStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusStarting:
		return StatusStarting
	case StatusInstalling:
		return StatusInstalling
	case StatusRunning:
		return StatusRunning
	case StatusStopping:
		return StatusStopping
	case StatusStopped:
		return StatusStopped
	default:
		return StatusError
	}
}
