package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"ServerProduct": "server_product",
		"User":          "user",
		"VoucherUsage":  "voucher_usage",
		"Category":      "category",
		"role":          "role",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "server_products", Plural("server_product"))
	assert.Equal(t, "categories", Plural("category"))
	assert.Equal(t, "voucher_usages", Plural("voucher_usage"))
	assert.Equal(t, "", Plural(""))
}

func TestDerive(t *testing.T) {
	m := Derive("ServerProduct")
	assert.Equal(t, Mapping{
		ActionIndex:  "access_server_products",
		ActionDetail: "view_server_product",
		ActionNew:    "create_server_product",
		ActionEdit:   "edit_server_product",
		ActionDelete: "delete_server_product",
	}, m)
}

func TestResourceOverridesWin(t *testing.T) {
	res := Resource{
		Name:      "Permission",
		Overrides: Mapping{ActionNew: "create_role", ActionEdit: "edit_role"},
	}
	perms := res.Permissions()
	assert.Equal(t, "access_permissions", perms[ActionIndex])
	assert.Equal(t, "view_permission", perms[ActionDetail])
	assert.Equal(t, "create_role", perms[ActionNew])
	assert.Equal(t, "edit_role", perms[ActionEdit])
	assert.Equal(t, "delete_permission", perms[ActionDelete])
}

func TestResourceOptOut(t *testing.T) {
	res := Resource{
		Name:   "Settings",
		OptOut: true,
		Custom: Mapping{ActionIndex: "access_settings_general", ActionEdit: "edit_settings_general"},
	}
	code, ok := res.CodeFor(ActionEdit)
	assert.True(t, ok)
	assert.Equal(t, "edit_settings_general", code)

	_, ok = res.CodeFor(ActionDelete)
	assert.False(t, ok, "opted-out resources get no derived codes")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Resource{Name: "Role"}))
	require.NoError(t, reg.Register(Resource{
		Name:      "Permission",
		Overrides: Mapping{ActionDelete: "delete_role"},
	}))

	err := reg.Register(Resource{Name: "Role"})
	assert.Error(t, err)
	assert.Error(t, reg.Register(Resource{}))

	code, ok := reg.CodeFor("Role", ActionIndex)
	assert.True(t, ok)
	assert.Equal(t, "access_roles", code)

	_, ok = reg.CodeFor("Unknown", ActionIndex)
	assert.False(t, ok)

	assert.Equal(t, []string{
		"access_permissions",
		"access_roles",
		"create_permission",
		"create_role",
		"delete_role",
		"edit_permission",
		"edit_role",
		"view_permission",
		"view_role",
	}, reg.DerivedCodes())
}
