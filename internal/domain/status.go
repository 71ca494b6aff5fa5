package domain

import "strings"

// Role is the coarse access level attached to a user and its session.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Roles lists every known role in ascending privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// ParseRole normalizes a role string. Empty input maps to RoleUser.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case "", RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role can use the admin console.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Viewer describes who is reading. A zero Viewer is an anonymous reader.
type Viewer struct {
	UserID        string
	Role          Role
	Authenticated bool
}

// Anonymous returns the viewer used for unauthenticated requests.
func Anonymous() Viewer {
	return Viewer{}
}

// IsAdmin reports whether the viewer holds an admin session.
func (v Viewer) IsAdmin() bool {
	return v.Authenticated && v.Role.IsAdmin()
}
