package controllers

import (
	"net/http"
	"strconv"

	"panel-rbac/auth"
	"panel-rbac/convention"
	"panel-rbac/models"
	"panel-rbac/repositories"
	"panel-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type PermissionController struct {
	perms  services.PermissionService
	guard  guard
	logger *zap.Logger
}

func NewPermissionController(perms services.PermissionService, checker auth.PermissionChecker, registry *convention.Registry, logger *zap.Logger) *PermissionController {
	return &PermissionController{
		perms:  perms,
		guard:  guard{checker: checker, registry: registry},
		logger: logger.Named("permission_controller"),
	}
}

// PermissionResponse is the API view of a catalog entry.
type PermissionResponse struct {
	ID          uint    `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Section     string  `json:"section"`
	IsSystem    bool    `json:"is_system"`
	PluginName  *string `json:"plugin_name,omitempty"`
}

func mapPermission(p *models.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Section:     p.Section,
		IsSystem:    p.IsSystem,
		PluginName:  p.PluginName,
	}
}

func mapPermissions(perms []models.Permission) []PermissionResponse {
	out := make([]PermissionResponse, len(perms))
	for i := range perms {
		out[i] = mapPermission(&perms[i])
	}
	return out
}

// RegisterRoutes sets up the permission catalog routes.
func (ctl *PermissionController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/permissions").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"permissions"}

	ws.Route(ctl.guard.resource(ws.GET(""), ResourcePermission, convention.ActionIndex).To(ctl.listPermissionsHandler).
		Doc("List catalog permissions").
		Param(ws.QueryParameter("active", "Only core and enabled-plugin permissions").DataType("boolean")).
		Param(ws.QueryParameter("section", "Filter by section").DataType("string")).
		Param(ws.QueryParameter("plugin", "Filter by owning plugin").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]PermissionResponse{}).
		Returns(http.StatusOK, "Permissions listed", []PermissionResponse{}))

	ws.Route(ctl.guard.resource(ws.GET("/sections"), ResourcePermission, convention.ActionIndex).To(ctl.sectionsHandler).
		Doc("List sections with their permission counts").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]repositories.SectionCount{}).
		Returns(http.StatusOK, "Sections listed", []repositories.SectionCount{}))

	ws.Route(ctl.guard.resource(ws.GET("/{code}"), ResourcePermission, convention.ActionDetail).To(ctl.getPermissionHandler).
		Doc("Get a permission by code").
		Param(ws.PathParameter("code", "Permission code").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PermissionResponse{}).
		Returns(http.StatusOK, "Permission found", PermissionResponse{}).
		Returns(http.StatusNotFound, "Permission not found", nil))

	ws.Route(ctl.guard.resource(ws.POST(""), ResourcePermission, convention.ActionNew).To(ctl.createPermissionHandler).
		Doc("Create a custom permission").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreatePermissionInput{}).
		Returns(http.StatusCreated, "Permission created", PermissionResponse{}).
		Returns(http.StatusBadRequest, "Invalid permission", nil).
		Returns(http.StatusConflict, "Code already exists", nil))

	ws.Route(ctl.guard.resource(ws.PUT("/{permission-id}"), ResourcePermission, convention.ActionEdit).To(ctl.updatePermissionHandler).
		Doc("Update a custom permission's name and description").
		Param(ws.PathParameter("permission-id", "Identifier of the permission").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdatePermissionInput{}).
		Returns(http.StatusOK, "Permission updated", PermissionResponse{}).
		Returns(http.StatusForbidden, "System permissions cannot be modified", nil).
		Returns(http.StatusNotFound, "Permission not found", nil))

	ws.Route(ctl.guard.resource(ws.DELETE("/{permission-id}"), ResourcePermission, convention.ActionDelete).To(ctl.deletePermissionHandler).
		Doc("Delete a custom permission and detach it from all roles").
		Param(ws.PathParameter("permission-id", "Identifier of the permission").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Permission deleted", nil).
		Returns(http.StatusForbidden, "System permissions cannot be deleted", nil).
		Returns(http.StatusNotFound, "Permission not found", nil))
}

func (ctl *PermissionController) listPermissionsHandler(request *restful.Request, response *restful.Response) {
	ctx := request.Request.Context()

	var (
		perms []models.Permission
		err   error
	)
	active, _ := strconv.ParseBool(request.QueryParameter("active"))
	switch {
	case active:
		perms, err = ctl.perms.ListActive(ctx)
	case request.QueryParameter("plugin") != "":
		perms, err = ctl.perms.ListByPlugin(ctx, request.QueryParameter("plugin"))
	case request.QueryParameter("section") != "":
		perms, err = ctl.perms.ListBySection(ctx, request.QueryParameter("section"))
	default:
		perms, err = ctl.perms.ListAll(ctx)
	}
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapPermissions(perms), restful.MIME_JSON)
}

func (ctl *PermissionController) sectionsHandler(request *restful.Request, response *restful.Response) {
	sections, err := ctl.perms.SectionsWithCount(request.Request.Context())
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, sections, restful.MIME_JSON)
}

func (ctl *PermissionController) getPermissionHandler(request *restful.Request, response *restful.Response) {
	perm, err := ctl.perms.GetByCode(request.Request.Context(), request.PathParameter("code"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapPermission(perm), restful.MIME_JSON)
}

func (ctl *PermissionController) createPermissionHandler(request *restful.Request, response *restful.Response) {
	input := new(services.CreatePermissionInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	// System permissions only come from seeding.
	if input.IsSystem {
		writeMessage(response, http.StatusBadRequest, "System permissions cannot be created through the API")
		return
	}

	perm, err := ctl.perms.CreatePermission(request.Request.Context(), *input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapPermission(perm), restful.MIME_JSON)
}

func (ctl *PermissionController) updatePermissionHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "permission-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid permission ID format")
		return
	}
	input := new(services.UpdatePermissionInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	perm, err := ctl.perms.UpdatePermission(request.Request.Context(), id, *input)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapPermission(perm), restful.MIME_JSON)
}

func (ctl *PermissionController) deletePermissionHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "permission-id")
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid permission ID format")
		return
	}
	if err := ctl.perms.DeletePermission(request.Request.Context(), id); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
