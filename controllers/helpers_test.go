package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"panel-rbac/auth"
	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/models"
	"panel-rbac/plugins"
	"panel-rbac/repositories"
	"panel-rbac/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type server struct {
	container  *restful.Container
	db         *gorm.DB
	users      repositories.UserRepository
	plugins    repositories.PluginRepository
	userRoles  services.UserRoleService
	admin      *models.User
	member     *models.User
	adminToken string
	userToken  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	auth.SetSigningKey([]byte("controller-test-secret"))

	db := dbtest.New(t)
	_, err := database.Seed(ctx, db, zap.NewNop())
	require.NoError(t, err)

	log := zap.NewNop()
	permRepo := repositories.NewPermissionRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	users := repositories.NewUserRepository(db)
	pluginRepo := repositories.NewPluginRepository(db)

	cache := plugins.NewEnabledPluginCache(t.TempDir(), pluginRepo, log, nil)
	permSvc := services.NewPermissionService(db, permRepo, roleRepo, pluginRepo, cache, log)
	roleSvc := services.NewRoleService(db, roleRepo, permRepo, log)
	userRoles := services.NewUserRoleService(users, roleRepo, log)
	authorizer := auth.NewAuthorizer(permRepo, users, log, nil)
	coordinator := plugins.NewCoordinator(permSvc, log, nil)
	registry := NewResourceRegistry()

	s := &server{container: restful.NewContainer(), db: db, users: users, plugins: pluginRepo, userRoles: userRoles}
	for _, ctl := range []interface{ RegisterRoutes(*restful.WebService) }{
		NewRoleController(roleSvc, authorizer, registry, log),
		NewPermissionController(permSvc, authorizer, registry, log),
		NewPluginController(coordinator, cache, authorizer, registry, log),
		NewUserRoleController(userRoles, authorizer, registry, log),
		NewAuthzController(authorizer, users, log),
	} {
		ws := new(restful.WebService)
		ctl.RegisterRoutes(ws)
		s.container.Add(ws)
	}

	s.admin, s.adminToken = s.newUser(t, "admin", models.RoleAdmin)
	s.member, s.userToken = s.newUser(t, "member", models.RoleUser)
	return s
}

func (s *server) newUser(t *testing.T, name string, roles ...string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Username: name, Password: "x", Email: name + "@example.com"}
	require.NoError(t, s.users.Create(ctx, u))
	u, err := s.userRoles.AssignRolesToUser(ctx, u.ID, roles)
	require.NoError(t, err)
	token, err := auth.GenerateToken(u)
	require.NoError(t, err)
	return u, token
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", restful.MIME_JSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.container.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

