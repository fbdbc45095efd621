package controllers

import (
	"context"
	"net/http"
	"time"

	"panel-rbac/auth"
	"panel-rbac/convention"
	"panel-rbac/models"
	"panel-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type RoleController struct {
	roles  services.RoleService
	guard  guard
	logger *zap.Logger
}

func NewRoleController(roles services.RoleService, checker auth.PermissionChecker, registry *convention.Registry, logger *zap.Logger) *RoleController {
	return &RoleController{
		roles:  roles,
		guard:  guard{checker: checker, registry: registry},
		logger: logger.Named("role_controller"),
	}
}

// RoleResponse is the API view of a role.
type RoleResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description *string   `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	Permissions []string  `json:"permissions"`
	UserCount   *int64    `json:"user_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignPermissionsRequest replaces a role's permission set.
type AssignPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func mapRole(role *models.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		DisplayName: role.DisplayName,
		Description: role.Description,
		IsSystem:    role.IsSystem,
		Permissions: role.PermissionCodes(),
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func mapRoles(roles []models.Role) []RoleResponse {
	out := make([]RoleResponse, len(roles))
	for i := range roles {
		out[i] = mapRole(&roles[i])
	}
	return out
}

// RegisterRoutes sets up the role routes for a go-restful WebService.
func (ctl *RoleController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/roles").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"roles"}

	ws.Route(ctl.guard.resource(ws.GET(""), ResourceRole, convention.ActionIndex).To(ctl.listRolesHandler).
		Doc("List roles, system roles first").
		Param(ws.QueryParameter("type", "Restrict to 'system' or 'custom' roles").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]RoleResponse{}).
		Returns(http.StatusOK, "Roles listed", []RoleResponse{}))

	ws.Route(ctl.guard.resource(ws.POST(""), ResourceRole, convention.ActionNew).To(ctl.createRoleHandler).
		Doc("Create a custom role").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateRoleInput{}).
		Returns(http.StatusCreated, "Role created", RoleResponse{}).
		Returns(http.StatusBadRequest, "Invalid role", nil).
		Returns(http.StatusNotFound, "Unknown permission code", nil).
		Returns(http.StatusConflict, "Role name already exists", nil))

	ws.Route(ctl.guard.resource(ws.GET("/{role-id}"), ResourceRole, convention.ActionDetail).To(ctl.getRoleHandler).
		Doc("Get a role with its permissions and user count").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(RoleResponse{}).
		Returns(http.StatusOK, "Role found", RoleResponse{}).
		Returns(http.StatusNotFound, "Role not found", nil))

	ws.Route(ctl.guard.resource(ws.PUT("/{role-id}"), ResourceRole, convention.ActionEdit).To(ctl.updateRoleHandler).
		Doc("Update a custom role's display name and description").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateRoleInput{}).
		Returns(http.StatusOK, "Role updated", RoleResponse{}).
		Returns(http.StatusForbidden, "System roles cannot be modified", nil).
		Returns(http.StatusNotFound, "Role not found", nil))

	ws.Route(ctl.guard.resource(ws.DELETE("/{role-id}"), ResourceRole, convention.ActionDelete).To(ctl.deleteRoleHandler).
		Doc("Delete a custom role without users").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Role deleted", nil).
		Returns(http.StatusForbidden, "System roles cannot be deleted", nil).
		Returns(http.StatusNotFound, "Role not found", nil).
		Returns(http.StatusConflict, "Role still has users", nil))

	ws.Route(ctl.guard.resource(ws.PUT("/{role-id}/permissions"), ResourceRole, convention.ActionEdit).To(ctl.assignPermissionsHandler).
		Doc("Replace a custom role's permission set").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(AssignPermissionsRequest{}).
		Returns(http.StatusOK, "Permissions assigned", RoleResponse{}).
		Returns(http.StatusForbidden, "System roles cannot be modified", nil).
		Returns(http.StatusNotFound, "Role or permission not found", nil))

	ws.Route(ctl.guard.resource(ws.POST("/{role-id}/permissions/{code}"), ResourceRole, convention.ActionEdit).To(ctl.addPermissionHandler).
		Doc("Grant one permission to a custom role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Param(ws.PathParameter("code", "Permission code").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Permission granted", RoleResponse{}))

	ws.Route(ctl.guard.resource(ws.DELETE("/{role-id}/permissions/{code}"), ResourceRole, convention.ActionEdit).To(ctl.removePermissionHandler).
		Doc("Revoke one permission from a custom role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Param(ws.PathParameter("code", "Permission code").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Permission revoked", RoleResponse{}))
}

func (ctl *RoleController) listRolesHandler(request *restful.Request, response *restful.Response) {
	ctx := request.Request.Context()

	var (
		roles []models.Role
		err   error
	)
	switch request.QueryParameter("type") {
	case "system":
		roles, err = ctl.roles.ListSystemRoles(ctx)
	case "custom":
		roles, err = ctl.roles.ListCustomRoles(ctx)
	case "":
		roles, err = ctl.roles.ListRoles(ctx)
	default:
		writeMessage(response, http.StatusBadRequest, "type must be 'system' or 'custom'")
		return
	}
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRoles(roles), restful.MIME_JSON)
}

func (ctl *RoleController) createRoleHandler(request *restful.Request, response *restful.Response) {
	input := new(services.CreateRoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := ctl.roles.CreateRole(request.Request.Context(), *input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapRole(role), restful.MIME_JSON)
}

func (ctl *RoleController) getRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	ctx := request.Request.Context()

	role, err := ctl.roles.GetRole(ctx, id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	count, err := ctl.roles.UserCount(ctx, id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}

	resp := mapRole(role)
	resp.UserCount = &count
	_ = response.WriteHeaderAndJson(http.StatusOK, resp, restful.MIME_JSON)
}

func (ctl *RoleController) updateRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	input := new(services.UpdateRoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := ctl.roles.UpdateRole(request.Request.Context(), id, *input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRole(role), restful.MIME_JSON)
}

func (ctl *RoleController) deleteRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	if err := ctl.roles.DeleteRole(request.Request.Context(), id); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}

func (ctl *RoleController) assignPermissionsHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	input := new(AssignPermissionsRequest)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := ctl.roles.AssignPermissions(request.Request.Context(), id, input.Permissions)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRole(role), restful.MIME_JSON)
}

func (ctl *RoleController) addPermissionHandler(request *restful.Request, response *restful.Response) {
	ctl.togglePermission(request, response, ctl.roles.AddPermission)
}

func (ctl *RoleController) removePermissionHandler(request *restful.Request, response *restful.Response) {
	ctl.togglePermission(request, response, ctl.roles.RemovePermission)
}

func (ctl *RoleController) togglePermission(request *restful.Request, response *restful.Response,
	apply func(ctx context.Context, id uint, code string) (*models.Role, error)) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	role, err := apply(request.Request.Context(), id, request.PathParameter("code"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRole(role), restful.MIME_JSON)
}
