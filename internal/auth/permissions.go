package auth

// Permission keys form a closed set validated against the catalog at
// seed time; call sites use these constants, not free-form strings.
const (
	PermDashboardView  = "dashboard.view"
	PermSalesView      = "sales.view"
	PermSalesCreate    = "sales.create"
	PermSalesEdit      = "sales.edit"
	PermSalesDelete    = "sales.delete"
	PermInventoryView  = "inventory.items.view"
	PermInventoryEdit  = "inventory.items.edit"
	PermInventoryMove  = "inventory.movements.edit"
	PermCustomersView  = "customers.view"
	PermCustomersEdit  = "customers.edit"
	PermSuppliersView  = "suppliers.view"
	PermSuppliersEdit  = "suppliers.edit"
	PermExpensesView   = "expenses.view"
	PermExpensesEdit   = "expenses.edit"
	PermReportsSales   = "reports.sales.view"
	PermReportsStock   = "reports.stock.view"
	PermSettingsEdit   = "settings.edit"
	PermStaffManage    = "staff.manage"
)

// BuiltinPermissions is the seedable catalog. Seeding inserts missing
// keys only; edited labels survive reseeding.
var BuiltinPermissions = []PermissionDefinition{
	{Key: PermDashboardView, MainTab: "dashboard", Action: "view", Label: "View dashboard"},
	{Key: PermSalesView, MainTab: "sales", Action: "view", Label: "View sales"},
	{Key: PermSalesCreate, MainTab: "sales", Action: "create", Label: "Record sales"},
	{Key: PermSalesEdit, MainTab: "sales", Action: "edit", Label: "Edit sales"},
	{Key: PermSalesDelete, MainTab: "sales", Action: "delete", Label: "Delete sales"},
	{Key: PermInventoryView, MainTab: "inventory", SubTab: "items", Action: "view", Label: "View inventory items"},
	{Key: PermInventoryEdit, MainTab: "inventory", SubTab: "items", Action: "edit", Label: "Edit inventory items"},
	{Key: PermInventoryMove, MainTab: "inventory", SubTab: "movements", Action: "edit", Label: "Record stock movements"},
	{Key: PermCustomersView, MainTab: "customers", Action: "view", Label: "View customers"},
	{Key: PermCustomersEdit, MainTab: "customers", Action: "edit", Label: "Edit customers"},
	{Key: PermSuppliersView, MainTab: "suppliers", Action: "view", Label: "View suppliers"},
	{Key: PermSuppliersEdit, MainTab: "suppliers", Action: "edit", Label: "Edit suppliers"},
	{Key: PermExpensesView, MainTab: "expenses", Action: "view", Label: "View expenses"},
	{Key: PermExpensesEdit, MainTab: "expenses", Action: "edit", Label: "Edit expenses"},
	{Key: PermReportsSales, MainTab: "reports", SubTab: "sales", Action: "view", Label: "View sales reports"},
	{Key: PermReportsStock, MainTab: "reports", SubTab: "stock", Action: "view", Label: "View stock reports"},
	{Key: PermSettingsEdit, MainTab: "settings", Action: "edit", Label: "Edit business settings"},
	{Key: PermStaffManage, MainTab: "staff", Action: "manage", Label: "Manage staff and grants"},
}
