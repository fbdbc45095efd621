// Package cmd implements the panel-rbac command line.
package cmd

import (
	"fmt"

	"panel-rbac/auth"
	"panel-rbac/config"
	"panel-rbac/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var flagConfigDir string

var rootCmd = &cobra.Command{
	Use:   "panel-rbac",
	Short: "Role-based access control for the hosting panel",
	Long: `panel-rbac owns the permission catalog, roles and user role assignments
of the hosting panel, answers authorization checks over HTTP and gRPC and
keeps plugin-declared permissions in sync with the plugin lifecycle.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "Directory containing config.yaml (default: . and ./config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(pluginCmd)
}

// env is what every command needs: configuration, a logger and the database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func loadEnv() (*env, error) {
	var paths []string
	if flagConfigDir != "" {
		paths = append(paths, flagConfigDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	auth.SetSigningKey([]byte(cfg.JwtSecret))
	if cfg.UsesInsecureSecret() {
		logger.Warn("JWT secret is the built-in default; set jwt_secret or RBAC_JWT_SECRET")
	}

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = e.logger.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "debug":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
