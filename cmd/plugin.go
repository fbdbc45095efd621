package cmd

import (
	"fmt"
	"os"

	"panel-rbac/plugins"
	"panel-rbac/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage plugin permissions and the enabled plugins cache",
}

var pluginRebuildCacheCmd = &cobra.Command{
	Use:   "rebuild-cache",
	Short: "Rewrite the enabled plugins snapshot from the plugin table",
	Args:  cobra.NoArgs,
	RunE:  runPluginRebuildCache,
}

var pluginClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove the enabled plugins snapshot",
	Args:  cobra.NoArgs,
	RunE:  runPluginClearCache,
}

var pluginDeletePermissionsCmd = &cobra.Command{
	Use:   "delete-permissions NAME",
	Short: "Delete every permission owned by a plugin (uninstall)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginDeletePermissions,
}

var pluginRegisterCmd = &cobra.Command{
	Use:   "register NAME",
	Short: "Enable a plugin and sync the permissions it declares",
	Long: `register marks the plugin enabled and syncs the permissions listed in the
declaration file, a YAML map of code to {name, description}:

  PLUGIN_BACKUPS_RESTORE:
    name: Restore Backups
    description: Restore a server from a backup`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginRegister,
}

var pluginDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a plugin; its permissions and role links are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginDisable,
}

var pluginUninstallCmd = &cobra.Command{
	Use:   "uninstall NAME",
	Short: "Remove a plugin and delete every permission it owns",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginUninstall,
}

var flagDeclarations string

func init() {
	pluginRegisterCmd.Flags().StringVarP(&flagDeclarations, "file", "f", "", "YAML permission declarations")
	_ = pluginRegisterCmd.MarkFlagRequired("file")

	pluginCmd.AddCommand(pluginRebuildCacheCmd)
	pluginCmd.AddCommand(pluginClearCacheCmd)
	pluginCmd.AddCommand(pluginDeletePermissionsCmd)
	pluginCmd.AddCommand(pluginRegisterCmd)
	pluginCmd.AddCommand(pluginDisableCmd)
	pluginCmd.AddCommand(pluginUninstallCmd)
}

func runPluginRebuildCache(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c := e.wire()
	if err := c.cache.Rebuild(cmd.Context()); err != nil {
		return err
	}
	snap, err := c.cache.Load()
	if err != nil {
		return err
	}
	fmt.Printf("Cache rebuilt with %d enabled plugin(s): %v\n", len(snap.Plugins), snap.Plugins)
	return nil
}

func runPluginClearCache(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.wire().cache.Clear(); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}

func runPluginDeletePermissions(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	n, err := e.wire().coordinator.Uninstall(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d permission(s) of plugin %s.\n", n, args[0])
	return nil
}

func readDeclarations(path string) (map[string]services.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	declared := map[string]services.Declaration{}
	if err := yaml.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return declared, nil
}

func runPluginRegister(cmd *cobra.Command, args []string) error {
	declared, err := readDeclarations(flagDeclarations)
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c := e.wire()
	if err := c.plugins.SetEnabled(cmd.Context(), args[0], true); err != nil {
		return err
	}
	if failed := c.dispatcher.Dispatch(cmd.Context(), plugins.Registered{Plugin: args[0], Permissions: declared}); failed > 0 {
		return fmt.Errorf("plugin %s enabled but its permissions could not be synced; see log", args[0])
	}
	owned, err := c.permSvc.ListByPlugin(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Plugin %s enabled with %d permission(s).\n", args[0], len(owned))
	return nil
}

func runPluginDisable(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c := e.wire()
	if err := c.plugins.SetEnabled(cmd.Context(), args[0], false); err != nil {
		return err
	}
	c.dispatcher.Dispatch(cmd.Context(), plugins.Disabled{Plugin: args[0]})
	fmt.Printf("Plugin %s disabled.\n", args[0])
	return nil
}

func runPluginUninstall(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c := e.wire()
	if err := c.plugins.Remove(cmd.Context(), args[0]); err != nil {
		return err
	}
	// The coordinator deletes the permissions; the dispatcher then rebuilds the cache.
	if failed := c.dispatcher.Dispatch(cmd.Context(), plugins.Uninstalled{Plugin: args[0]}); failed > 0 {
		return fmt.Errorf("plugin %s removed but its permissions could not be deleted; run delete-permissions", args[0])
	}
	fmt.Printf("Plugin %s uninstalled.\n", args[0])
	return nil
}
