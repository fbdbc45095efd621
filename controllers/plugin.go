package controllers

import (
	"context"
	"net/http"

	"panel-rbac/auth"
	"panel-rbac/convention"
	"panel-rbac/plugins"
	"panel-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// PluginPermissions is the part of the lifecycle coordinator the API drives.
type PluginPermissions interface {
	Sync(ctx context.Context, ev plugins.Registered) (services.SyncResult, error)
	Uninstall(ctx context.Context, pluginName string) (int64, error)
}

// PluginCache is the enabled-plugin snapshot maintained by the API.
type PluginCache interface {
	Rebuild(ctx context.Context) error
	Clear() error
	Load() (*plugins.Snapshot, error)
}

type PluginController struct {
	coordinator PluginPermissions
	cache       PluginCache
	guard       guard
	logger      *zap.Logger
}

func NewPluginController(coordinator PluginPermissions, cache PluginCache, checker auth.PermissionChecker, registry *convention.Registry, logger *zap.Logger) *PluginController {
	return &PluginController{
		coordinator: coordinator,
		cache:       cache,
		guard:       guard{checker: checker, registry: registry},
		logger:      logger.Named("plugin_controller"),
	}
}

// DeletedResponse reports how many rows an uninstall removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// RegisterRoutes sets up the plugin permission routes.
func (ctl *PluginController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/plugins").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"plugins"}

	ws.Route(ctl.guard.resource(ws.POST("/{plugin-name}/permissions/sync"), ResourcePlugin, convention.ActionEdit).To(ctl.syncHandler).
		Doc("Sync the permissions a plugin declares").
		Param(ws.PathParameter("plugin-name", "Plugin name").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(map[string]services.Declaration{}).
		Returns(http.StatusOK, "Permissions synced", services.SyncResult{}).
		Returns(http.StatusBadRequest, "Invalid declaration", nil))

	ws.Route(ctl.guard.resource(ws.DELETE("/{plugin-name}/permissions"), ResourcePlugin, convention.ActionDelete).To(ctl.deletePermissionsHandler).
		Doc("Delete every permission owned by a plugin").
		Param(ws.PathParameter("plugin-name", "Plugin name").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Permissions deleted", DeletedResponse{}))

	ws.Route(ctl.guard.resource(ws.GET("/cache"), ResourcePlugin, convention.ActionIndex).To(ctl.showCacheHandler).
		Doc("Show the enabled plugins snapshot").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Snapshot", plugins.Snapshot{}).
		Returns(http.StatusNotFound, "No snapshot written yet", nil))

	ws.Route(ctl.guard.resource(ws.POST("/cache/rebuild"), ResourcePlugin, convention.ActionEdit).To(ctl.rebuildCacheHandler).
		Doc("Rebuild the enabled plugins snapshot").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Snapshot rebuilt", plugins.Snapshot{}).
		Returns(http.StatusInternalServerError, "Snapshot could not be written", nil))

	ws.Route(ctl.guard.resource(ws.DELETE("/cache"), ResourcePlugin, convention.ActionEdit).To(ctl.clearCacheHandler).
		Doc("Remove the enabled plugins snapshot").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Snapshot removed", nil))
}

func (ctl *PluginController) syncHandler(request *restful.Request, response *restful.Response) {
	name := request.PathParameter("plugin-name")
	declared := map[string]services.Declaration{}
	if err := request.ReadEntity(&declared); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	ctx := request.Request.Context()

	res, err := ctl.coordinator.Sync(ctx, plugins.Registered{Plugin: name, Permissions: declared})
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	if err := ctl.cache.Rebuild(ctx); err != nil {
		ctl.logger.Warn("Permissions synced but cache rebuild failed", zap.String("plugin", name), zap.Error(err))
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, res, restful.MIME_JSON)
}

func (ctl *PluginController) deletePermissionsHandler(request *restful.Request, response *restful.Response) {
	n, err := ctl.coordinator.Uninstall(request.Request.Context(), request.PathParameter("plugin-name"))
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, DeletedResponse{Deleted: n}, restful.MIME_JSON)
}

func (ctl *PluginController) showCacheHandler(request *restful.Request, response *restful.Response) {
	snap, err := ctl.cache.Load()
	if err != nil {
		writeMessage(response, http.StatusNotFound, "Enabled plugins cache is absent")
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, snap, restful.MIME_JSON)
}

func (ctl *PluginController) rebuildCacheHandler(request *restful.Request, response *restful.Response) {
	if err := ctl.cache.Rebuild(request.Request.Context()); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	snap, err := ctl.cache.Load()
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, snap, restful.MIME_JSON)
}

func (ctl *PluginController) clearCacheHandler(request *restful.Request, response *restful.Response) {
	if err := ctl.cache.Clear(); err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
