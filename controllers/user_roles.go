package controllers

import (
	"net/http"

	"panel-rbac/auth"
	"panel-rbac/convention"
	"panel-rbac/permissions"
	"panel-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type UserRoleController struct {
	userRoles services.UserRoleService
	guard     guard
	logger    *zap.Logger
}

func NewUserRoleController(userRoles services.UserRoleService, checker auth.PermissionChecker, registry *convention.Registry, logger *zap.Logger) *UserRoleController {
	return &UserRoleController{
		userRoles: userRoles,
		guard:     guard{checker: checker, registry: registry},
		logger:    logger.Named("user_role_controller"),
	}
}

// AssignRolesRequest replaces a user's roles.
type AssignRolesRequest struct {
	Roles []string `json:"roles"`
}

// RegisterRoutes sets up the user role assignment routes.
func (ctl *UserRoleController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/users").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"users"}
	view, edit := permissions.ViewUser.String(), permissions.EditUser.String()

	ws.Route(ctl.guard.code(ws.GET("/{user-id}/roles"), view).To(ctl.getRolesHandler).
		Doc("List the roles assigned to a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]RoleResponse{}).
		Returns(http.StatusOK, "Roles listed", []RoleResponse{}).
		Returns(http.StatusNotFound, "User not found", nil))

	ws.Route(ctl.guard.code(ws.PUT("/{user-id}/roles"), edit).To(ctl.replaceRolesHandler).
		Doc("Replace the roles assigned to a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(AssignRolesRequest{}).
		Returns(http.StatusOK, "Roles assigned", []RoleResponse{}).
		Returns(http.StatusNotFound, "User or role not found", nil))

	ws.Route(ctl.guard.code(ws.POST("/{user-id}/roles/{role-name}"), edit).To(ctl.addRoleHandler).
		Doc("Assign one role to a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Param(ws.PathParameter("role-name", "Role name").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Role assigned", []RoleResponse{}))

	ws.Route(ctl.guard.code(ws.DELETE("/{user-id}/roles/{role-name}"), edit).To(ctl.removeRoleHandler).
		Doc("Remove one role from a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Param(ws.PathParameter("role-name", "Role name").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Role removed", []RoleResponse{}))
}

func (ctl *UserRoleController) getRolesHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "user-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	roles, err := ctl.userRoles.GetUserRoles(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRoles(roles), restful.MIME_JSON)
}

func (ctl *UserRoleController) replaceRolesHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "user-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	input := new(AssignRolesRequest)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.userRoles.AssignRolesToUser(request.Request.Context(), id, input.Roles)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRoles(user.Roles), restful.MIME_JSON)
}

func (ctl *UserRoleController) addRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "user-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	user, err := ctl.userRoles.AssignRoleToUser(request.Request.Context(), id, request.PathParameter("role-name"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRoles(user.Roles), restful.MIME_JSON)
}

func (ctl *UserRoleController) removeRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "user-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	user, err := ctl.userRoles.RemoveRoleFromUser(request.Request.Context(), id, request.PathParameter("role-name"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRoles(user.Roles), restful.MIME_JSON)
}
