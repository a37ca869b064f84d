package models

import "fmt"

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleReception Role = "reception"
	RoleViewer    Role = "viewer"
	RoleStudent   Role = "student"
)

// AllRoles lists every role in privilege order
var AllRoles = []Role{RoleAdmin, RoleManager, RoleReception, RoleViewer, RoleStudent}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleReception, RoleViewer, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsAdmin reports whether r has full administrative rights
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsAdminOrManager reports whether r may manage accounts, staff and settings
func (r Role) IsAdminOrManager() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	case RoleReception, RoleViewer, RoleStudent:
		return false
	}
	return false
}

// CanRecordPayments reports whether r may edit the roster and record rent
func (r Role) CanRecordPayments() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleReception:
		return true
	case RoleViewer, RoleStudent:
		return false
	}
	return false
}

// IsStaff reports whether r may open the admin console
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleReception, RoleViewer:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// IsReadOnly reports whether every mutating request from r must be refused
func (r Role) IsReadOnly() bool {
	switch r {
	case RoleViewer:
		return true
	case RoleAdmin, RoleManager, RoleReception, RoleStudent:
		return false
	}
	return true
}
