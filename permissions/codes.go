// Package permissions enumerates the core permission codes and the naming
// rules for plugin-owned codes.
//
// Core codes are snake_case and verb-first (access_, view_, create_, edit_,
// delete_ ...). Plugin codes live in the PLUGIN_<NAME> namespace.
package permissions

type Code string

func (c Code) String() string { return string(c) }

const (
	// Dashboard
	AccessDashboard     Code = "access_dashboard"
	AccessAdminOverview Code = "access_admin_overview"

	// User management
	AccessUsers Code = "access_users"
	CreateUser  Code = "create_user"
	EditUser    Code = "edit_user"
	DeleteUser  Code = "delete_user"
	ViewUser    Code = "view_user"

	// Server management
	AccessServers        Code = "access_servers"
	EditServer           Code = "edit_server"
	DeleteServer         Code = "delete_server"
	ViewServer           Code = "view_server"
	AccessServerLogs     Code = "access_server_logs"
	AccessServerProducts Code = "access_server_products"
	ViewServerProduct    Code = "view_server_product"
	EditServerProduct    Code = "edit_server_product"
	DeleteServerProduct  Code = "delete_server_product"

	// Shop
	AccessShop       Code = "access_shop"
	AccessCategories Code = "access_categories"
	CreateCategory   Code = "create_category"
	EditCategory     Code = "edit_category"
	DeleteCategory   Code = "delete_category"
	ViewCategory     Code = "view_category"
	AccessProducts   Code = "access_products"
	CreateProduct    Code = "create_product"
	EditProduct      Code = "edit_product"
	DeleteProduct    Code = "delete_product"
	ViewProduct      Code = "view_product"
	CopyProduct      Code = "copy_product"

	// Payment
	AccessWallet   Code = "access_wallet"
	AccessPayments Code = "access_payments"
	ViewPayment    Code = "view_payment"

	// Voucher
	AccessVouchers      Code = "access_vouchers"
	CreateVoucher       Code = "create_voucher"
	EditVoucher         Code = "edit_voucher"
	DeleteVoucher       Code = "delete_voucher"
	ViewVoucher         Code = "view_voucher"
	AccessVoucherUsages Code = "access_voucher_usages"
	ViewVoucherUsage    Code = "view_voucher_usage"
	ShowVoucherUsages   Code = "show_voucher_usages"

	// Logs
	AccessSystemLogs Code = "access_system_logs"
	AccessEmailLogs  Code = "access_email_logs"
	AccessLogs       Code = "access_logs"
	ViewLog          Code = "view_log"
	ViewEmailLog     Code = "view_email_log"
	ViewServerLog    Code = "view_server_log"

	// Settings, access
	AccessSettingsGeneral     Code = "access_settings_general"
	AccessSettingsPterodactyl Code = "access_settings_pterodactyl"
	AccessSettingsSecurity    Code = "access_settings_security"
	AccessSettingsPayment     Code = "access_settings_payment"
	AccessSettingsEmail       Code = "access_settings_email"
	AccessSettingsTheme       Code = "access_settings_theme"
	AccessSettingsPlugin      Code = "access_settings_plugin"

	// Settings, edit
	EditSettingsGeneral     Code = "edit_settings_general"
	EditSettingsPterodactyl Code = "edit_settings_pterodactyl"
	EditSettingsSecurity    Code = "edit_settings_security"
	EditSettingsPayment     Code = "edit_settings_payment"
	EditSettingsEmail       Code = "edit_settings_email"
	EditSettingsTheme       Code = "edit_settings_theme"
	EditSettingsPlugin      Code = "edit_settings_plugin"

	// Plugins
	AccessPlugins   Code = "access_plugins"
	ViewPlugin      Code = "view_plugin"
	EnablePlugin    Code = "enable_plugin"
	DisablePlugin   Code = "disable_plugin"
	InstallPlugin   Code = "install_plugin"
	UninstallPlugin Code = "uninstall_plugin"
	UploadPlugin    Code = "upload_plugin"
	ConfigurePlugin Code = "configure_plugin"

	// Role management
	AccessRoles       Code = "access_roles"
	CreateRole        Code = "create_role"
	EditRole          Code = "edit_role"
	DeleteRole        Code = "delete_role"
	ViewRole          Code = "view_role"
	AccessPermissions Code = "access_permissions"
	ViewPermission    Code = "view_permission"

	// User features
	AccessMyAccount      Code = "access_my_account"
	AccessMyServers      Code = "access_my_servers"
	AccessUserPayments   Code = "access_user_payments"
	ViewUserPayment      Code = "view_user_payment"
	EditUserAccount      Code = "edit_user_account"
	ContinuePayment      Code = "continue_payment"
	PurchaseServer       Code = "purchase_server"
	RenewServer          Code = "renew_server"
	AccessPterodactylSSO Code = "access_pterodactyl_sso"

	// Pterodactyl integration
	PterodactylRootAdmin Code = "pterodactyl_root_admin"
)

// Section names used for grouping in the admin UI.
const (
	SectionDashboard              = "dashboard"
	SectionUserManagement         = "user_management"
	SectionServerManagement       = "server_management"
	SectionShop                   = "shop"
	SectionPayment                = "payment"
	SectionVoucher                = "voucher"
	SectionLogs                   = "logs"
	SectionSettings               = "settings"
	SectionPlugins                = "plugins"
	SectionRoleManagement         = "role_management"
	SectionUserFeatures           = "user_features"
	SectionPterodactylIntegration = "pterodactyl_integration"
	SectionUnknown                = "unknown"
)

// Group is one UI section with its codes in display order.
type Group struct {
	Section string
	Codes   []Code
}

var groups = []Group{
	{SectionDashboard, []Code{AccessDashboard, AccessAdminOverview}},
	{SectionUserManagement, []Code{AccessUsers, CreateUser, EditUser, DeleteUser, ViewUser}},
	{SectionServerManagement, []Code{
		AccessServers, EditServer, DeleteServer, ViewServer, AccessServerLogs,
		AccessServerProducts, ViewServerProduct, EditServerProduct, DeleteServerProduct,
	}},
	{SectionShop, []Code{
		AccessShop, AccessCategories, CreateCategory, EditCategory, DeleteCategory, ViewCategory,
		AccessProducts, CreateProduct, EditProduct, DeleteProduct, ViewProduct, CopyProduct,
	}},
	{SectionPayment, []Code{AccessWallet, AccessPayments, ViewPayment}},
	{SectionVoucher, []Code{
		AccessVouchers, CreateVoucher, EditVoucher, DeleteVoucher, ViewVoucher,
		AccessVoucherUsages, ViewVoucherUsage, ShowVoucherUsages,
	}},
	{SectionLogs, []Code{AccessSystemLogs, AccessEmailLogs, AccessLogs, ViewLog, ViewEmailLog, ViewServerLog}},
	{SectionSettings, []Code{
		AccessSettingsGeneral, AccessSettingsPterodactyl, AccessSettingsSecurity, AccessSettingsPayment,
		AccessSettingsEmail, AccessSettingsTheme, AccessSettingsPlugin,
		EditSettingsGeneral, EditSettingsPterodactyl, EditSettingsSecurity, EditSettingsPayment,
		EditSettingsEmail, EditSettingsTheme, EditSettingsPlugin,
	}},
	{SectionPlugins, []Code{
		AccessPlugins, ViewPlugin, EnablePlugin, DisablePlugin,
		InstallPlugin, UninstallPlugin, UploadPlugin, ConfigurePlugin,
	}},
	{SectionRoleManagement, []Code{AccessRoles, CreateRole, EditRole, DeleteRole, ViewRole, AccessPermissions, ViewPermission}},
	{SectionUserFeatures, []Code{
		AccessMyAccount, AccessMyServers, AccessUserPayments, ViewUserPayment, EditUserAccount,
		ContinuePayment, PurchaseServer, RenewServer, AccessPterodactylSSO,
	}},
	{SectionPterodactylIntegration, []Code{PterodactylRootAdmin}},
}

var sectionByCode = func() map[Code]string {
	m := make(map[Code]string)
	for _, g := range groups {
		for _, c := range g.Codes {
			m[c] = g.Section
		}
	}
	return m
}()

// Groups returns the core codes grouped by section. The result is a copy.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Section: g.Section, Codes: append([]Code(nil), g.Codes...)}
	}
	return out
}

// Section returns the UI section of a core code, or SectionUnknown.
func (c Code) Section() string {
	if s, ok := sectionByCode[c]; ok {
		return s
	}
	return SectionUnknown
}

// Parse converts s to a core Code. ok is false for plugin or unknown codes.
func Parse(s string) (Code, bool) {
	c := Code(s)
	_, ok := sectionByCode[c]
	return c, ok
}

func IsCore(s string) bool {
	_, ok := Parse(s)
	return ok
}

// AllCodes returns every core code in section order.
func AllCodes() []Code {
	var out []Code
	for _, g := range groups {
		out = append(out, g.Codes...)
	}
	return out
}

// StandardUserCodes is the self-service subset granted to the standard user role.
func StandardUserCodes() []Code {
	return []Code{
		AccessDashboard,
		AccessShop,
		AccessWallet,
		AccessMyAccount,
		AccessMyServers,
		AccessUserPayments,
		ViewUserPayment,
		EditUserAccount,
		ContinuePayment,
		PurchaseServer,
		RenewServer,
		AccessPterodactylSSO,
	}
}

// Strings converts codes to plain strings.
func Strings(codes []Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
