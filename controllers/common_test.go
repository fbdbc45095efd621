package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"panel-rbac/apperrors"
	"panel-rbac/convention"
	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/repositories"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperrors.Validation(nil, "name is required"), http.StatusBadRequest, "name is required"},
		{apperrors.NotFound("Role 3 not found"), http.StatusNotFound, "Role 3 not found"},
		{apperrors.Immutable("Cannot delete system role"), http.StatusForbidden, "Cannot delete system role"},
		{apperrors.Conflict("Role 'x' already exists"), http.StatusConflict, "Role 'x' already exists"},
		{apperrors.Referential("Role has 2 users"), http.StatusConflict, "Role has 2 users"},
		{apperrors.CacheWriteFailure(errors.New("disk full"), "replacing snapshot"), http.StatusInternalServerError, "replacing snapshot"},
		{errors.New("connection reset"), http.StatusInternalServerError, "An internal error occurred"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		handleServiceError(restful.NewResponse(w), zap.NewNop(), tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), tc.message)
	}
}

func TestResourceRegistry(t *testing.T) {
	reg := NewResourceRegistry()
	cases := []struct {
		resource string
		action   convention.Action
		code     string
	}{
		{ResourceRole, convention.ActionIndex, "access_roles"},
		{ResourceRole, convention.ActionDetail, "view_role"},
		{ResourcePermission, convention.ActionIndex, "access_permissions"},
		{ResourcePermission, convention.ActionNew, "create_role"},
		{ResourcePermission, convention.ActionDelete, "delete_role"},
		{ResourcePlugin, convention.ActionEdit, "configure_plugin"},
		{ResourcePlugin, convention.ActionDelete, "uninstall_plugin"},
	}
	for _, tc := range cases {
		code, ok := reg.CodeFor(tc.resource, tc.action)
		assert.True(t, ok, "%s/%s", tc.resource, tc.action)
		assert.Equal(t, tc.code, code)
	}

	_, ok := reg.CodeFor(ResourcePlugin, convention.ActionNew)
	assert.False(t, ok)
}

func TestMissingRouteCodes(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	_, err := database.Seed(ctx, db, zap.NewNop())
	require.NoError(t, err)
	perms := repositories.NewPermissionRepository(db)

	reg := NewResourceRegistry()
	missing, err := MissingRouteCodes(ctx, reg, perms)
	require.NoError(t, err)
	assert.Empty(t, missing, "every management route is guarded by a seeded permission")

	reg.MustRegister(convention.Resource{Name: "Invoice"})
	missing, err = MissingRouteCodes(ctx, reg, perms)
	require.NoError(t, err)
	assert.Equal(t, []string{"access_invoices", "create_invoice", "delete_invoice", "edit_invoice", "view_invoice"}, missing)
}
