package auth

import (
	"net/http"
	"strings"

	"panel-rbac/convention"

	restful "github.com/emicklei/go-restful/v3"
)

// Request attribute keys set by AuthFilter.
const (
	AttrUserID   = "user_id"
	AttrUsername = "username"
)

// AuthFilter creates a go-restful FilterFunction for JWT authentication.
func AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		authHeader := req.HeaderParameter("Authorization")
		if authHeader == "" {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Authorization header required"}, restful.MIME_JSON)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Invalid authorization header format"}, restful.MIME_JSON)
			return
		}

		claims, err := ParseAndValidateToken(parts[1])
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		req.SetAttribute(AttrUserID, claims.UserID)
		req.SetAttribute(AttrUsername, claims.Username)
		chain.ProcessFilter(req, resp)
	}
}

// UserIDFromRequest returns the subject set by AuthFilter.
func UserIDFromRequest(req *restful.Request) (uint, bool) {
	id, ok := req.Attribute(AttrUserID).(uint)
	return id, ok
}

// RequirePermission lets the request through only when the authenticated
// subject is granted code. It must run after AuthFilter.
func RequirePermission(checker PermissionChecker, code string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		userID, ok := UserIDFromRequest(req)
		if !ok {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"}, restful.MIME_JSON)
			return
		}
		if !checker.CheckPermission(req.Request.Context(), userID, code) {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden", "permission": code}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// RequireResource resolves the code guarding action on resource through the
// registry and enforces it. A resource/action without a code is a wiring
// bug and panics at route registration time.
func RequireResource(checker PermissionChecker, registry *convention.Registry, resource string, action convention.Action) restful.FilterFunction {
	code, ok := registry.CodeFor(resource, action)
	if !ok {
		panic("no permission code for " + resource + "/" + string(action))
	}
	return RequirePermission(checker, code)
}
