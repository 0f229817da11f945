package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountStatus is the normalized active flag of a profile.
type AccountStatus int

const (
	// StatusInactive marks a disabled account.
	StatusInactive AccountStatus = iota
	// StatusActive marks an account allowed to use the portal.
	StatusActive
)

// Active reports whether the status allows access.
func (s AccountStatus) Active() bool { return s == StatusActive }

func (s AccountStatus) String() string {
	if s == StatusActive {
		return "active"
	}
	return "inactive"
}

// ParseAccountStatus normalizes a status value read from the profile store.
// Rows have carried booleans, integers and strings; anything else is rejected.
func ParseAccountStatus(raw any) (AccountStatus, error) {
	switch v := raw.(type) {
	case bool:
		return statusFromBool(v), nil
	case *bool:
		if v == nil {
			return StatusInactive, fmt.Errorf("profile: nil status")
		}
		return statusFromBool(*v), nil
	case int:
		return statusFromBool(v != 0), nil
	case int32:
		return statusFromBool(v != 0), nil
	case int64:
		return statusFromBool(v != 0), nil
	case float64:
		return statusFromBool(v != 0), nil
	case []byte:
		return parseStatusString(string(v))
	case string:
		return parseStatusString(v)
	case AccountStatus:
		return v, nil
	default:
		return StatusInactive, fmt.Errorf("profile: unsupported status type %T", raw)
	}
}

func statusFromBool(active bool) AccountStatus {
	if active {
		return StatusActive
	}
	return StatusInactive
}

func parseStatusString(s string) (AccountStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "active", "ativo", "yes", "sim":
		return StatusActive, nil
	case "false", "f", "inactive", "inativo", "no", "nao", "não":
		return StatusInactive, nil
	}
	n, errNum := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if errNum != nil {
		return StatusInactive, fmt.Errorf("profile: unrecognized status %q", s)
	}
	return statusFromBool(n != 0), nil
}

// Role is the portal role of a profile.
type Role string

// Roles known to the portal.
const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// IsAdmin reports whether the role is admin.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ParseRole normalizes a role value read from the profile store.
// Unknown non-empty roles are kept as-is and treated as non-admin.
func ParseRole(raw any) (Role, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case Role:
		s = string(v)
	default:
		return "", fmt.Errorf("profile: unsupported role type %T", raw)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("profile: empty role")
	}
	return Role(s), nil
}
