package auth

// NavItem is an entry of the dashboard sidebar. An item is visible when the
// caller holds any of its permissions.
type NavItem struct {
	Name        string       `json:"name"`
	Href        string       `json:"href"`
	Permissions []Permission `json:"-"`
	Children    []NavItem    `json:"children,omitempty"`
}

var dashboardNav = []NavItem{
	{Name: "Dashboard", Href: "/dashboard", Permissions: []Permission{PermDashboardView}},
	{
		Name: "Orders", Href: "/dashboard/orders", Permissions: []Permission{PermOrdersView, PermOrdersManage},
		Children: []NavItem{
			{Name: "Active Orders", Href: "/dashboard/orders", Permissions: []Permission{PermOrdersView, PermOrdersManage}},
			{Name: "POS System", Href: "/dashboard/pos", Permissions: []Permission{PermOrdersManage}},
			{Name: "Order History", Href: "/dashboard/orders/history", Permissions: []Permission{PermOrdersView, PermOrdersManage}},
		},
	},
	{
		Name: "Tables", Href: "/dashboard/tables", Permissions: []Permission{PermTablesView, PermTablesManage},
		Children: []NavItem{
			{Name: "Floor Plan", Href: "/dashboard/tables", Permissions: []Permission{PermTablesView, PermTablesManage}},
			{Name: "Reservations", Href: "/dashboard/reservations", Permissions: []Permission{PermReservationsView, PermReservationsManage}},
		},
	},
	{
		Name: "Menu", Href: "/dashboard/menu", Permissions: []Permission{PermMenuView, PermMenuManage},
		Children: []NavItem{
			{Name: "Menu Items", Href: "/dashboard/menu/items", Permissions: []Permission{PermMenuView, PermMenuManage}},
			{Name: "Categories", Href: "/dashboard/menu/categories", Permissions: []Permission{PermMenuManage}},
			{Name: "Pricing", Href: "/dashboard/menu/pricing", Permissions: []Permission{PermMenuManage}},
		},
	},
	{
		Name: "Staff", Href: "/dashboard/staff", Permissions: []Permission{PermStaffView, PermStaffManage},
		Children: []NavItem{
			{Name: "Employees", Href: "/dashboard/staff", Permissions: []Permission{PermStaffView, PermStaffManage}},
			{Name: "Schedules", Href: "/dashboard/schedules", Permissions: []Permission{PermStaffManage}},
			{Name: "Performance", Href: "/dashboard/staff/performance", Permissions: []Permission{PermStaffView, PermStaffManage}},
		},
	},
	{
		Name: "Inventory", Href: "/dashboard/inventory", Permissions: []Permission{PermInventoryView, PermInventoryManage},
		Children: []NavItem{
			{Name: "Stock Levels", Href: "/dashboard/inventory", Permissions: []Permission{PermInventoryView, PermInventoryManage}},
			{Name: "Suppliers", Href: "/dashboard/inventory/suppliers", Permissions: []Permission{PermInventoryManage}},
			{Name: "Cost Analysis", Href: "/dashboard/inventory/costs", Permissions: []Permission{PermInventoryView, PermInventoryManage}},
		},
	},
	{
		Name: "Analytics", Href: "/dashboard/analytics", Permissions: []Permission{PermAnalyticsView},
		Children: []NavItem{
			{Name: "Overview", Href: "/dashboard/analytics", Permissions: []Permission{PermAnalyticsView}},
			{Name: "Sales Reports", Href: "/dashboard/reports", Permissions: []Permission{PermReportsView}},
			{Name: "Performance", Href: "/dashboard/analytics/performance", Permissions: []Permission{PermAnalyticsView}},
		},
	},
	{Name: "Settings", Href: "/dashboard/settings", Permissions: []Permission{PermSettingsManage}},
}

// Navigation returns the dashboard entries visible to a holder of perms.
func Navigation(perms PermissionSet) []NavItem {
	return filterNav(dashboardNav, perms)
}

func filterNav(items []NavItem, perms PermissionSet) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if !perms.HasAny(item.Permissions...) {
			continue
		}
		visible := item
		visible.Children = nil
		if len(item.Children) > 0 {
			visible.Children = filterNav(item.Children, perms)
		}
		out = append(out, visible)
	}
	return out
}
