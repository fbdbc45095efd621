package database

import "panel-rbac/permissions"

type seedPermission struct {
	Code        permissions.Code
	Name        string
	Description string
	Section     string
}

// systemPermissions is the catalog installed on first boot. Sections carry
// an "(admin)" suffix where the capability is administrative.
var systemPermissions = []seedPermission{
	{permissions.AccessDashboard, "Access Dashboard", "Access main dashboard", "dashboard"},
	{permissions.AccessAdminOverview, "Access Admin Overview", "Access admin overview page with system statistics (admin)", "dashboard"},
	{permissions.AccessUsers, "Access Users", "View and manage users list (admin)", "user_management (admin)"},
	{permissions.CreateUser, "Create User", "Create new user accounts (admin)", "user_management (admin)"},
	{permissions.EditUser, "Edit User", "Edit user account details and roles (admin)", "user_management (admin)"},
	{permissions.DeleteUser, "Delete User", "Delete user accounts from the system (admin)", "user_management (admin)"},
	{permissions.ViewUser, "View User Details", "View detailed user information (admin)", "user_management (admin)"},
	{permissions.AccessServers, "Access Servers", "View and manage all servers (admin)", "server_management (admin)"},
	{permissions.EditServer, "Edit Server", "Edit server configurations and settings (admin)", "server_management (admin)"},
	{permissions.DeleteServer, "Delete Server", "Delete servers from the system (admin)", "server_management (admin)"},
	{permissions.ViewServer, "View Server", "View detailed server information (admin)", "server_management (admin)"},
	{permissions.AccessServerLogs, "Access Server Logs", "View server activity logs (admin)", "server_management (admin)"},
	{permissions.AccessServerProducts, "Access Server Products", "View and manage server products (admin)", "server_management (admin)"},
	{permissions.ViewServerProduct, "View Server Product", "View server product details (admin)", "server_management (admin)"},
	{permissions.EditServerProduct, "Edit Server Product", "Edit server product configuration (admin)", "server_management (admin)"},
	{permissions.DeleteServerProduct, "Delete Server Product", "Delete server products (admin)", "server_management (admin)"},
	{permissions.AccessShop, "Access Shop", "Browse shop and view products", "shop"},
	{permissions.AccessCategories, "Access Categories", "View and manage product categories (admin)", "shop (admin)"},
	{permissions.CreateCategory, "Create Category", "Create new product categories (admin)", "shop (admin)"},
	{permissions.EditCategory, "Edit Category", "Edit existing categories (admin)", "shop (admin)"},
	{permissions.DeleteCategory, "Delete Category", "Delete product categories (admin)", "shop (admin)"},
	{permissions.ViewCategory, "View Category", "View category details (admin)", "shop (admin)"},
	{permissions.AccessProducts, "Access Products", "View and manage products (admin)", "shop (admin)"},
	{permissions.CreateProduct, "Create Product", "Create new products in the shop (admin)", "shop (admin)"},
	{permissions.EditProduct, "Edit Product", "Edit product details and pricing (admin)", "shop (admin)"},
	{permissions.DeleteProduct, "Delete Product", "Delete products from the shop (admin)", "shop (admin)"},
	{permissions.ViewProduct, "View Product", "View product details (admin)", "shop (admin)"},
	{permissions.CopyProduct, "Copy Product", "Duplicate product to create a new one (admin)", "shop (admin)"},
	{permissions.AccessWallet, "Access Wallet", "Access wallet and recharge balance", "user_features"},
	{permissions.AccessPayments, "Access Payments", "View all payments and transactions (admin)", "user_features"},
	{permissions.ViewPayment, "View Payment Details", "View payment transaction details (admin)", "user_features"},
	{permissions.AccessVouchers, "Access Vouchers", "View and manage vouchers (admin)", "voucher (admin)"},
	{permissions.CreateVoucher, "Create Voucher", "Create new discount vouchers (admin)", "voucher (admin)"},
	{permissions.EditVoucher, "Edit Voucher", "Edit existing vouchers (admin)", "voucher (admin)"},
	{permissions.DeleteVoucher, "Delete Voucher", "Delete vouchers from the system (admin)", "voucher (admin)"},
	{permissions.ViewVoucher, "View Voucher", "View voucher details and usage (admin)", "voucher (admin)"},
	{permissions.AccessVoucherUsages, "Access Voucher Usages", "View voucher redemption history (admin)", "voucher (admin)"},
	{permissions.ViewVoucherUsage, "View Voucher Usage", "View specific voucher usage details (admin)", "voucher (admin)"},
	{permissions.ShowVoucherUsages, "Show Voucher Usages", "View list of redeemed vouchers (admin)", "voucher (admin)"},
	{permissions.AccessSystemLogs, "Access System Logs", "View system logs and events (admin)", "logs (admin)"},
	{permissions.AccessEmailLogs, "Access Email Logs", "View email delivery logs (admin)", "logs (admin)"},
	{permissions.AccessLogs, "Access Logs", "View system logs list (admin)", "logs (admin)"},
	{permissions.ViewLog, "View Log", "View detailed log entry information (admin)", "logs (admin)"},
	{permissions.ViewEmailLog, "View Email Log", "View email log entry details (admin)", "logs (admin)"},
	{permissions.ViewServerLog, "View Server Log", "View server activity log details (admin)", "logs (admin)"},
	{permissions.AccessSettingsGeneral, "Access General Settings", "View and edit general system settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsPterodactyl, "Access Pterodactyl Settings", "View and edit Pterodactyl integration settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsSecurity, "Access Security Settings", "View and edit security settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsPayment, "Access Payment Settings", "View and edit payment gateway settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsEmail, "Access Email Settings", "View and edit email/SMTP settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsTheme, "Access Theme Settings", "View and edit theme/appearance settings (admin)", "settings (admin)"},
	{permissions.AccessSettingsPlugin, "Access Plugin Settings", "View and configure plugin settings (admin)", "settings (admin)"},
	{permissions.EditSettingsGeneral, "Edit General Settings", "Edit general system configuration (admin)", "settings (admin)"},
	{permissions.EditSettingsPterodactyl, "Edit Pterodactyl Settings", "Edit Pterodactyl API configuration (admin)", "settings (admin)"},
	{permissions.EditSettingsSecurity, "Edit Security Settings", "Edit security and authentication settings (admin)", "settings (admin)"},
	{permissions.EditSettingsPayment, "Edit Payment Settings", "Edit payment gateway configuration (admin)", "settings (admin)"},
	{permissions.EditSettingsEmail, "Edit Email Settings", "Edit email/SMTP configuration (admin)", "settings (admin)"},
	{permissions.EditSettingsTheme, "Edit Theme Settings", "Edit theme and appearance configuration (admin)", "settings (admin)"},
	{permissions.EditSettingsPlugin, "Edit Plugin Settings", "Edit plugin-specific settings (admin)", "settings (admin)"},
	{permissions.AccessPlugins, "Access Plugins", "View and manage plugins (admin)", "plugins (admin)"},
	{permissions.ViewPlugin, "View Plugin", "View plugin information and settings (admin)", "plugins (admin)"},
	{permissions.EnablePlugin, "Enable Plugin", "Enable plugins and activate features (admin)", "plugins (admin)"},
	{permissions.DisablePlugin, "Disable Plugin", "Disable plugins and deactivate features (admin)", "plugins (admin)"},
	{permissions.InstallPlugin, "Install Plugin", "Install new plugins to the system (admin)", "plugins (admin)"},
	{permissions.UninstallPlugin, "Uninstall Plugin", "Remove plugins from the system (admin)", "plugins (admin)"},
	{permissions.UploadPlugin, "Upload Plugin", "Upload plugin packages for installation (admin)", "plugins (admin)"},
	{permissions.ConfigurePlugin, "Configure Plugin", "Configure plugin settings and options (admin)", "plugins (admin)"},
	{permissions.AccessRoles, "Access Roles", "View and manage roles (admin)", "role_management (admin)"},
	{permissions.CreateRole, "Create Role", "Create new custom roles (admin)", "role_management (admin)"},
	{permissions.EditRole, "Edit Role", "Edit role permissions and details (admin)", "role_management (admin)"},
	{permissions.DeleteRole, "Delete Role", "Delete custom roles from the system (admin)", "role_management (admin)"},
	{permissions.ViewRole, "View Role Details", "View role details and assigned permissions (admin)", "role_management (admin)"},
	{permissions.AccessPermissions, "Access Permissions", "View system permissions list (admin)", "role_management (admin)"},
	{permissions.ViewPermission, "View Permission Details", "View permission details and description (admin)", "role_management (admin)"},
	{permissions.AccessMyAccount, "Access My Account", "Access own account settings and profile", "user_features"},
	{permissions.AccessMyServers, "Access My Servers", "View and manage own servers", "user_features"},
	{permissions.AccessUserPayments, "Access User Payments", "View own payment history", "user_features"},
	{permissions.ViewUserPayment, "View User Payment", "View own payment transaction details", "user_features"},
	{permissions.EditUserAccount, "Edit User Account", "Edit own account profile and settings", "user_features"},
	{permissions.ContinuePayment, "Continue Payment", "Complete pending payment transactions", "user_features"},
	{permissions.PurchaseServer, "Purchase Server", "Purchase new servers from the shop", "user_features"},
	{permissions.RenewServer, "Renew Server", "Renew server subscriptions", "user_features"},
	{permissions.AccessPterodactylSSO, "Access Pterodactyl SSO", "Single sign-on to Pterodactyl panel", "user_features"},
	{permissions.PterodactylRootAdmin, "Pterodactyl Root Admin", "Grant root admin access in Pterodactyl Panel (admin, dangerous)", "pterodactyl_integration (admin)"},
}
