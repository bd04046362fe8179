package auth

import (
	"sort"

	"github.com/restaurantos/restaurant-service/internal/domain"
)

// Permission is a capability string in resource.verb form.
type Permission string

const (
	PermDashboardView      Permission = "dashboard.view"
	PermMenuView           Permission = "menu.view"
	PermMenuManage         Permission = "menu.manage"
	PermTablesView         Permission = "tables.view"
	PermTablesManage       Permission = "tables.manage"
	PermOrdersView         Permission = "orders.view"
	PermOrdersCreate       Permission = "orders.create"
	PermOrdersManage       Permission = "orders.manage"
	PermStaffView          Permission = "staff.view"
	PermStaffManage        Permission = "staff.manage"
	PermAnalyticsView      Permission = "analytics.view"
	PermSettingsManage     Permission = "settings.manage"
	PermInventoryView      Permission = "inventory.view"
	PermInventoryManage    Permission = "inventory.manage"
	PermReservationsView   Permission = "reservations.view"
	PermReservationsCreate Permission = "reservations.create"
	PermReservationsManage Permission = "reservations.manage"
	PermReportsView        Permission = "reports.view"
	PermAccountManage      Permission = "account.manage"
)

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports membership of p.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one of perms is in the set.
func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Len returns the number of permissions.
func (s PermissionSet) Len() int {
	return len(s)
}

// Equal compares two sets ignoring order.
func (s PermissionSet) Equal(other PermissionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if !other.Has(p) {
			return false
		}
	}
	return true
}

// List returns the permissions sorted lexically.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns List as plain strings.
func (s PermissionSet) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = string(p)
	}
	return out
}

// Resolve returns the permission set granted to role. Unknown roles get an
// empty set. Each call returns a fresh set the caller may keep.
func Resolve(role domain.Role) PermissionSet {
	switch role {
	case domain.RoleOwner:
		return NewPermissionSet(
			PermDashboardView,
			PermMenuManage,
			PermTablesManage,
			PermOrdersManage,
			PermStaffManage,
			PermAnalyticsView,
			PermSettingsManage,
			PermInventoryManage,
			PermReservationsManage,
			PermReportsView,
		)
	case domain.RoleManager:
		return NewPermissionSet(
			PermDashboardView,
			PermMenuManage,
			PermTablesManage,
			PermOrdersManage,
			PermStaffView,
			PermAnalyticsView,
			PermInventoryManage,
			PermReservationsManage,
			PermReportsView,
		)
	case domain.RoleWaiter:
		return NewPermissionSet(
			PermDashboardView,
			PermMenuView,
			PermTablesView,
			PermOrdersManage,
			PermReservationsView,
		)
	case domain.RoleKitchen:
		return NewPermissionSet(
			PermDashboardView,
			PermMenuView,
			PermOrdersView,
			PermInventoryView,
		)
	case domain.RoleCustomer:
		return NewPermissionSet(
			PermMenuView,
			PermOrdersCreate,
			PermReservationsCreate,
			PermAccountManage,
		)
	default:
		return PermissionSet{}
	}
}
