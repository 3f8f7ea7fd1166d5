package identity

import "strings"

// Role is the closed set of roles a caller can hold. Anything the provider
// returns outside this set becomes RoleNone before it leaves this package.
type Role string

const (
	RoleNone        Role = ""
	RoleOwner       Role = "owner"
	RoleManager     Role = "manager"
	RoleCashier     Role = "cashier"
	RoleKitchen     Role = "kitchen"
	RoleMaintenance Role = "maintenance"
	RoleDriver      Role = "driver"
	RoleSecurity    Role = "security"
)

var knownRoles = map[Role]bool{
	RoleOwner:       true,
	RoleManager:     true,
	RoleCashier:     true,
	RoleKitchen:     true,
	RoleMaintenance: true,
	RoleDriver:      true,
	RoleSecurity:    true,
}

// ParseRole normalizes an untyped metadata value.
func ParseRole(v interface{}) Role {
	s, ok := v.(string)
	if !ok {
		return RoleNone
	}
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if knownRoles[r] {
		return r
	}
	return RoleNone
}

// IsRestricted reports whether r is an operational role that may never
// perform administrative actions.
func (r Role) IsRestricted() bool {
	switch r {
	case RoleCashier, RoleKitchen, RoleMaintenance, RoleDriver, RoleSecurity:
		return true
	}
	return false
}

// IsStaff reports whether r is bound to a single restaurant through metadata.
func (r Role) IsStaff() bool {
	return r == RoleManager || r.IsRestricted()
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
