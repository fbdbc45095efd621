package plugins

import (
	"context"

	"panel-rbac/apperrors"
	"panel-rbac/metrics"
	"panel-rbac/permissions"
	"panel-rbac/services"

	"go.uber.org/zap"
)

// Coordinator ties plugin lifecycle to the permission catalog. Disabling a
// plugin never removes its permissions or role links; only Uninstall does.
type Coordinator struct {
	perms   services.PermissionService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var (
	_ RegisteredHook = (*Coordinator)(nil)
	_ DisabledHook   = (*Coordinator)(nil)
)

func NewCoordinator(perms services.PermissionService, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{perms: perms, logger: logger.Named("plugin_coordinator"), metrics: m}
}

// Sync upserts the namespaced subset of ev.Permissions. Failures are
// returned as ErrSyncFailure.
func (c *Coordinator) Sync(ctx context.Context, ev Registered) (services.SyncResult, error) {
	log := c.logger.With(zap.String("plugin", ev.Plugin))

	owned := make(map[string]services.Declaration, len(ev.Permissions))
	var foreign []string
	for code, decl := range ev.Permissions {
		if permissions.HasPluginPrefix(code, ev.Plugin) {
			owned[code] = decl
		} else {
			foreign = append(foreign, code)
		}
	}
	if len(foreign) > 0 {
		log.Debug("Skipping codes outside plugin namespace", zap.Strings("codes", foreign))
	}
	if len(owned) == 0 {
		log.Debug("No permissions found for plugin")
		return services.SyncResult{Rejected: foreign}, nil
	}

	res, err := c.perms.SyncPluginPermissions(ctx, ev.Plugin, owned)
	if err != nil {
		c.metrics.ObservePluginSync(false, 0, 0, 0, 0)
		log.Error("Failed to sync plugin permissions", zap.Error(err))
		return services.SyncResult{}, apperrors.SyncFailure(err, "syncing permissions of plugin '%s'", ev.Plugin)
	}
	res.Rejected = append(res.Rejected, foreign...)

	c.metrics.ObservePluginSync(true, res.Created, res.Updated, res.Unchanged, len(res.Rejected))
	log.Info("Synced plugin permissions to database",
		zap.Int("permission_count", len(owned)),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("rejected", len(res.Rejected)))
	return res, nil
}

func (c *Coordinator) OnRegistered(ctx context.Context, ev Registered) error {
	_, err := c.Sync(ctx, ev)
	return err
}

// OnDisabled only reports. The plugin's permissions stay in the catalog and
// keep their role links so that re-enabling restores access unchanged.
func (c *Coordinator) OnDisabled(ctx context.Context, ev Disabled) error {
	perms, err := c.perms.ListByPlugin(ctx, ev.Plugin)
	if err != nil {
		return err
	}
	c.logger.Info("Plugin disabled, permissions kept",
		zap.String("plugin", ev.Plugin),
		zap.Int("inactive_permissions", len(perms)),
		zap.Bool("role_links_preserved", true))
	return nil
}

// OnUninstalled drops the plugin's permissions together with their role links.
func (c *Coordinator) OnUninstalled(ctx context.Context, ev Uninstalled) error {
	n, err := c.Uninstall(ctx, ev.Plugin)
	if err != nil {
		return err
	}
	c.logger.Info("Plugin uninstalled, permissions removed",
		zap.String("plugin", ev.Plugin), zap.Int64("deleted_permissions", n))
	return nil
}

// Uninstall removes every permission owned by the plugin.
func (c *Coordinator) Uninstall(ctx context.Context, pluginName string) (int64, error) {
	return c.perms.DeletePluginPermissions(ctx, pluginName)
}
