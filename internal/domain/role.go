package domain

import "strings"

// Role enumerates the principals that can hold a token.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleWaiter   Role = "waiter"
	RoleKitchen  Role = "kitchen"
	RoleCustomer Role = "customer"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleOwner, RoleManager, RoleWaiter, RoleKitchen, RoleCustomer}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleWaiter, RoleKitchen, RoleCustomer:
		return true
	default:
		return false
	}
}

// IsStaff is true for roles that work inside a restaurant dashboard.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleCustomer
}

// ParseRole normalizes raw input into a Role. Unknown values return false.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}
