// Package plugins reacts to plugin lifecycle events: it keeps plugin-owned
// permissions in the catalog in sync and maintains the enabled-plugin cache.
//
// Handlers opt in to the events they care about by implementing the
// matching hook interface.
package plugins

import (
	"context"

	"panel-rbac/services"
)

// Event is a plugin lifecycle event.
type Event interface {
	PluginName() string
}

// Registered is emitted when a plugin is loaded and declares its permissions.
type Registered struct {
	Plugin      string
	Permissions map[string]services.Declaration
}

func (e Registered) PluginName() string { return e.Plugin }

// Disabled is emitted when a plugin is switched off.
type Disabled struct {
	Plugin string
}

func (e Disabled) PluginName() string { return e.Plugin }

// Uninstalled is emitted after a plugin has been removed from the plugin table.
type Uninstalled struct {
	Plugin string
}

func (e Uninstalled) PluginName() string { return e.Plugin }

// RegisteredHook is implemented by handlers interested in Registered.
type RegisteredHook interface {
	OnRegistered(ctx context.Context, ev Registered) error
}

// DisabledHook is implemented by handlers interested in Disabled.
type DisabledHook interface {
	OnDisabled(ctx context.Context, ev Disabled) error
}

// UninstalledHook is implemented by handlers interested in Uninstalled.
type UninstalledHook interface {
	OnUninstalled(ctx context.Context, ev Uninstalled) error
}
