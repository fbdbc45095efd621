package controllers

import (
	"errors"
	"net/http"

	"panel-rbac/auth"
	"panel-rbac/repositories"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthzController lets an authenticated subject ask about its own access.
type AuthzController struct {
	authorizer *auth.Authorizer
	users      repositories.UserRepository
	logger     *zap.Logger
}

func NewAuthzController(authorizer *auth.Authorizer, users repositories.UserRepository, logger *zap.Logger) *AuthzController {
	return &AuthzController{authorizer: authorizer, users: users, logger: logger.Named("authz_controller")}
}

type CheckResponse struct {
	Permission string `json:"permission"`
	Decision   string `json:"decision"`
	Granted    bool   `json:"granted"`
}

type SubjectResponse struct {
	UserID      uint     `json:"user_id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RegisterRoutes sets up the self-service authorization routes.
func (ctl *AuthzController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/authz").Produces(restful.MIME_JSON)
	tags := []string{"authz"}

	ws.Route(ws.GET("/check").Filter(auth.AuthFilter()).To(ctl.checkHandler).
		Doc("Decide whether the caller holds a permission").
		Param(ws.QueryParameter("permission", "Permission code").DataType("string").Required(true)).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(CheckResponse{}).
		Returns(http.StatusOK, "Decision", CheckResponse{}).
		Returns(http.StatusBadRequest, "Missing permission", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", nil))

	ws.Route(ws.GET("/me").Filter(auth.AuthFilter()).To(ctl.meHandler).
		Doc("List the caller's effective roles and permissions").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(SubjectResponse{}).
		Returns(http.StatusOK, "Effective access", SubjectResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", nil))
}

func (ctl *AuthzController) checkHandler(request *restful.Request, response *restful.Response) {
	code := request.QueryParameter("permission")
	if code == "" {
		writeMessage(response, http.StatusBadRequest, "permission query parameter is required")
		return
	}
	userID, ok := auth.UserIDFromRequest(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
		return
	}

	d, err := ctl.authorizer.DecideForUser(request.Request.Context(), userID, code)
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, CheckResponse{
		Permission: code,
		Decision:   d.String(),
		Granted:    d == auth.Granted,
	}, restful.MIME_JSON)
}

func (ctl *AuthzController) meHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.UserIDFromRequest(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
		return
	}

	user, err := ctl.users.FindByIDWithRoles(request.Request.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Unknown user")
		return
	}
	if err != nil {
		handleServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, SubjectResponse{
		UserID:      user.ID,
		Username:    user.Username,
		Roles:       ctl.authorizer.EffectiveRoleNames(user),
		Permissions: ctl.authorizer.EffectivePermissions(user),
	}, restful.MIME_JSON)
}
