package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"panel-rbac/apperrors"
	"panel-rbac/auth"
	"panel-rbac/convention"
	"panel-rbac/repositories"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Resource names registered for the management API.
const (
	ResourceRole       = "Role"
	ResourcePermission = "Permission"
	ResourcePlugin     = "Plugin"
)

// NewResourceRegistry registers the admin resources exposed over HTTP
// together with the codes that guard them.
func NewResourceRegistry() *convention.Registry {
	reg := convention.NewRegistry()
	reg.MustRegister(convention.Resource{Name: ResourceRole})
	// Editing the catalog is part of role management.
	reg.MustRegister(convention.Resource{
		Name: ResourcePermission,
		Overrides: convention.Mapping{
			convention.ActionNew:    "create_role",
			convention.ActionEdit:   "edit_role",
			convention.ActionDelete: "delete_role",
		},
	})
	reg.MustRegister(convention.Resource{
		Name:   ResourcePlugin,
		OptOut: true,
		Custom: convention.Mapping{
			convention.ActionIndex:  "access_plugins",
			convention.ActionEdit:   "configure_plugin",
			convention.ActionDelete: "uninstall_plugin",
		},
	})
	return reg
}

// MissingRouteCodes returns the codes guarding registered resources that are
// not system permissions of the catalog, sorted.
func MissingRouteCodes(ctx context.Context, registry *convention.Registry, perms repositories.PermissionRepository) ([]string, error) {
	system, err := perms.FindSystem(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(system))
	for _, p := range system {
		known[p.Code] = struct{}{}
	}
	var missing []string
	for _, code := range registry.DerivedCodes() {
		if _, ok := known[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing, nil
}

// guard builds the filter chain protecting one route.
type guard struct {
	checker  auth.PermissionChecker
	registry *convention.Registry
}

func (g guard) resource(rb *restful.RouteBuilder, resource string, action convention.Action) *restful.RouteBuilder {
	return rb.Filter(auth.AuthFilter()).Filter(auth.RequireResource(g.checker, g.registry, resource, action))
}

func (g guard) code(rb *restful.RouteBuilder, code string) *restful.RouteBuilder {
	return rb.Filter(auth.AuthFilter()).Filter(auth.RequirePermission(g.checker, code))
}

func writeMessage(response *restful.Response, status int, message string) {
	_ = response.WriteHeaderAndJson(status, map[string]string{"message": message}, restful.MIME_JSON)
}

func pathID(request *restful.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(response *restful.Response, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, apperrors.Message(err)
	case apperrors.IsNotFound(err):
		status, message = http.StatusNotFound, apperrors.Message(err)
	case errors.Is(err, apperrors.ErrImmutable):
		status, message = http.StatusForbidden, apperrors.Message(err)
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrReferentialConstraint):
		status, message = http.StatusConflict, apperrors.Message(err)
	case errors.Is(err, apperrors.ErrSyncFailure), errors.Is(err, apperrors.ErrCacheWriteFailure):
		message = apperrors.Message(err)
		logger.Error("Plugin operation failed", zap.Error(err))
	default:
		logger.Error("Unhandled service error", zap.Error(err))
	}

	writeMessage(response, status, message)
}
