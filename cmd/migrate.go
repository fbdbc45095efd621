package cmd

import (
	"panel-rbac/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the RBAC tables",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, seed system permissions and roles, and convert legacy user roles",
	Long: `seed is safe to run repeatedly. It creates the system permission catalog
and the ROLE_ADMIN and ROLE_USER roles when missing, then assigns relational
roles to users that only carry the legacy role list.`,
	RunE: runSeed,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(e.db); err != nil {
		return err
	}
	e.logger.Info("Database migrated")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return database.Bootstrap(cmd.Context(), e.db, e.logger)
}
