package cmd

import (
	"panel-rbac/auth"
	"panel-rbac/metrics"
	"panel-rbac/plugins"
	"panel-rbac/repositories"
	"panel-rbac/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// components is the wired object graph of the RBAC core.
type components struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	perms   repositories.PermissionRepository
	roles   repositories.RoleRepository
	users   repositories.UserRepository
	plugins repositories.PluginRepository

	cache       *plugins.EnabledPluginCache
	permSvc     services.PermissionService
	roleSvc     services.RoleService
	userRoleSvc services.UserRoleService
	authorizer  *auth.Authorizer
	coordinator *plugins.Coordinator
	dispatcher  *plugins.Dispatcher
}

func (e *env) wire() *components {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	c := &components{
		registry: reg,
		metrics:  m,
		perms:    repositories.NewPermissionRepository(e.db),
		roles:    repositories.NewRoleRepository(e.db),
		users:    repositories.NewUserRepository(e.db),
		plugins:  repositories.NewPluginRepository(e.db),
	}

	c.cache = plugins.NewEnabledPluginCache(e.cfg.PluginCacheDir, c.plugins, e.logger, m)
	c.permSvc = services.NewPermissionService(e.db, c.perms, c.roles, c.plugins, c.cache, e.logger)
	c.roleSvc = services.NewRoleService(e.db, c.roles, c.perms, e.logger)
	c.userRoleSvc = services.NewUserRoleService(c.users, c.roles, e.logger)
	c.authorizer = auth.NewAuthorizer(c.perms, c.users, e.logger, m)

	c.coordinator = plugins.NewCoordinator(c.permSvc, e.logger, m)
	c.dispatcher = plugins.NewDispatcher(c.cache, e.logger)
	c.dispatcher.Subscribe(c.coordinator)
	return c
}
