package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ConsulConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	LogLevel    string `mapstructure:"log_level"`
	DatabaseURL string `mapstructure:"database_url"`
	ServiceName string `mapstructure:"service_name"`
	JwtSecret   string `mapstructure:"jwt_secret"`
	// Directory holding the enabled-plugin snapshot.
	PluginCacheDir string       `mapstructure:"plugin_cache_dir"`
	Consul         ConsulConfig `mapstructure:"consul"`
}

const insecureDefaultSecret = "default-very-insecure-secret-key"

// Load reads config.yaml from the working directory or ./config, then
// applies RBAC_* environment overrides. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("RBAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("service_name", "panel-rbac")
	v.SetDefault("jwt_secret", insecureDefaultSecret) // CHANGE THIS IN PRODUCTION
	v.SetDefault("plugin_cache_dir", "var/cache")
	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return cfg, nil
}

// UsesInsecureSecret reports whether the JWT secret is still the built-in default.
func (c *Config) UsesInsecureSecret() bool {
	return c.JwtSecret == insecureDefaultSecret
}
