package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"panel-rbac/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRoutes(t *testing.T) {
	t.Run("requires authentication and permission", func(t *testing.T) {
		s := newServer(t)
		requireStatus(t, s.do(t, http.MethodGet, "/roles", "", nil), http.StatusUnauthorized)

		w := s.do(t, http.MethodGet, "/roles", s.userToken, nil)
		requireStatus(t, w, http.StatusForbidden)
		assert.Equal(t, "access_roles", decode[map[string]string](t, w)["permission"])
	})

	t.Run("lists system roles first", func(t *testing.T) {
		s := newServer(t)
		w := s.do(t, http.MethodGet, "/roles", s.adminToken, nil)
		requireStatus(t, w, http.StatusOK)
		roles := decode[[]RoleResponse](t, w)
		require.Len(t, roles, 2)
		assert.True(t, roles[0].IsSystem)
		assert.True(t, roles[1].IsSystem)

		w = s.do(t, http.MethodGet, "/roles?type=custom", s.adminToken, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Empty(t, decode[[]RoleResponse](t, w))

		requireStatus(t, s.do(t, http.MethodGet, "/roles?type=weird", s.adminToken, nil), http.StatusBadRequest)
	})

	t.Run("create, update and delete a custom role", func(t *testing.T) {
		s := newServer(t)
		w := s.do(t, http.MethodPost, "/roles", s.adminToken, map[string]any{
			"name":         "support",
			"display_name": "Support",
			"permissions":  []string{"view_user", "access_users"},
		})
		requireStatus(t, w, http.StatusCreated)
		created := decode[RoleResponse](t, w)
		assert.False(t, created.IsSystem)
		assert.ElementsMatch(t, []string{"view_user", "access_users"}, created.Permissions)
		path := fmt.Sprintf("/roles/%d", created.ID)

		requireStatus(t, s.do(t, http.MethodPost, "/roles", s.adminToken, map[string]any{
			"name": "support", "display_name": "Again",
		}), http.StatusConflict)

		w = s.do(t, http.MethodPut, path, s.adminToken, map[string]any{"display_name": "Customer Support"})
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "Customer Support", decode[RoleResponse](t, w).DisplayName)

		w = s.do(t, http.MethodPut, path+"/permissions", s.adminToken, map[string]any{"permissions": []string{"edit_user"}})
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, []string{"edit_user"}, decode[RoleResponse](t, w).Permissions)

		w = s.do(t, http.MethodPost, path+"/permissions/view_user", s.adminToken, nil)
		requireStatus(t, w, http.StatusOK)
		assert.ElementsMatch(t, []string{"edit_user", "view_user"}, decode[RoleResponse](t, w).Permissions)

		w = s.do(t, http.MethodDelete, path+"/permissions/edit_user", s.adminToken, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, []string{"view_user"}, decode[RoleResponse](t, w).Permissions)

		w = s.do(t, http.MethodGet, path, s.adminToken, nil)
		requireStatus(t, w, http.StatusOK)
		detail := decode[RoleResponse](t, w)
		require.NotNil(t, detail.UserCount)
		assert.EqualValues(t, 0, *detail.UserCount)

		requireStatus(t, s.do(t, http.MethodDelete, path, s.adminToken, nil), http.StatusNoContent)
		requireStatus(t, s.do(t, http.MethodGet, path, s.adminToken, nil), http.StatusNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		s := newServer(t)
		requireStatus(t, s.do(t, http.MethodPost, "/roles", s.adminToken, map[string]any{
			"name": "Bad Name", "display_name": "Bad",
		}), http.StatusBadRequest)

		requireStatus(t, s.do(t, http.MethodPost, "/roles", s.adminToken, map[string]any{
			"name": "ghost", "display_name": "Ghost", "permissions": []string{"no_such_code"},
		}), http.StatusNotFound)

		requireStatus(t, s.do(t, http.MethodGet, "/roles/abc", s.adminToken, nil), http.StatusBadRequest)
	})

	t.Run("system roles are read-only", func(t *testing.T) {
		s := newServer(t)
		admin := s.admin.Roles[0]
		require.Equal(t, models.RoleAdmin, admin.Name)
		path := fmt.Sprintf("/roles/%d", admin.ID)

		requireStatus(t, s.do(t, http.MethodPut, path, s.adminToken, map[string]any{"display_name": "Root"}), http.StatusForbidden)
		requireStatus(t, s.do(t, http.MethodDelete, path, s.adminToken, nil), http.StatusForbidden)
		requireStatus(t, s.do(t, http.MethodPut, path+"/permissions", s.adminToken, map[string]any{"permissions": []string{}}), http.StatusForbidden)
	})

	t.Run("role with users cannot be deleted", func(t *testing.T) {
		s := newServer(t)
		w := s.do(t, http.MethodPost, "/roles", s.adminToken, map[string]any{"name": "auditor", "display_name": "Auditor"})
		requireStatus(t, w, http.StatusCreated)
		role := decode[RoleResponse](t, w)
		s.newUser(t, "carol", "auditor")

		requireStatus(t, s.do(t, http.MethodDelete, fmt.Sprintf("/roles/%d", role.ID), s.adminToken, nil), http.StatusConflict)
	})
}
