package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConnectionConfig holds the configuration for a single Azure DevOps
// organization connection. The personal access token is never stored
// here; it lives in the system keyring under the connection ID.
type ConnectionConfig struct {
	// ID is the unique identifier for this connection.
	ID string `mapstructure:"id" yaml:"id"`

	// Name is the user-defined label for this connection.
	Name string `mapstructure:"name" yaml:"name"`

	// OrganizationURL is the base URL of the Azure DevOps organization
	// (e.g. https://dev.azure.com/acme or https://acme.visualstudio.com).
	OrganizationURL string `mapstructure:"organization_url" yaml:"organization_url"`

	// Project is the Azure DevOps project name to sync from.
	Project string `mapstructure:"project" yaml:"project"`

	// Enabled controls whether this connection is used for imports.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// ImportConfig holds defaults applied to import runs.
type ImportConfig struct {
	// DefaultUserID is the local user imported tasks are assigned to
	// when no --user flag is given.
	DefaultUserID string `mapstructure:"default_user_id" yaml:"default_user_id"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Connections []ConnectionConfig `mapstructure:"connections" yaml:"connections"`
	Import      ImportConfig       `mapstructure:"import" yaml:"import"`

	// DatabasePath is the location of the local SQLite database.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// LogLevel controls logging verbosity ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tracklight/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tracklight", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, err := os.UserHomeDir()
	dbPath := "tracklight.db"
	if err == nil {
		dbPath = filepath.Join(home, ".config", "tracklight", "tracklight.db")
	}
	return &AppConfig{
		Connections:  []ConnectionConfig{},
		DatabasePath: dbPath,
		LogLevel:     "info",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Treat an unset enabled flag as true; viper unmarshals missing
	// bools as false.
	for i := range cfg.Connections {
		key := fmt.Sprintf("connections.%d.enabled", i)
		if !cfg.Connections[i].Enabled && !v.IsSet(key) {
			cfg.Connections[i].Enabled = true
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("connections", cfg.Connections)
	v.Set("import", cfg.Import)
	v.Set("database_path", cfg.DatabasePath)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Connection returns the connection with the given name or ID, or the
// single enabled connection when name is empty and exactly one exists.
func (c *AppConfig) Connection(name string) (*ConnectionConfig, error) {
	if name == "" {
		var enabled []*ConnectionConfig
		for i := range c.Connections {
			if c.Connections[i].Enabled {
				enabled = append(enabled, &c.Connections[i])
			}
		}
		if len(enabled) == 1 {
			return enabled[0], nil
		}
		return nil, fmt.Errorf("%d connections configured; use --connection to pick one", len(enabled))
	}

	for i := range c.Connections {
		if c.Connections[i].Name == name || c.Connections[i].ID == name {
			return &c.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("connection %q not found", name)
}
