package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServiceConfig holds tracking-service configuration
type ServiceConfig struct {
	URL   string `mapstructure:"url"`   // Tracking service base URL
	Token string `mapstructure:"token"` // Bearer token; empty means guest mode
	Email string `mapstructure:"email"` // Logged-in account (display only)
}

// CacheConfig holds local storage configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Local store directory; empty disables persistence
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			URL: "https://dropbinge.app",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dropbinge", "dropbinge.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dropbinge", "dropbinge.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dropbinge")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dropbinge")
	}
}

// defaultCachePath returns the default local store directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "dropbinge", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dropbinge", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("DROPBINGE")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("service.url", cfg.Service.URL)
	viper.Set("service.token", cfg.Service.Token)
	viper.Set("service.email", cfg.Service.Email)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfigFile()
}

// SaveSession saves the bearer token and account email after a login
func SaveSession(token, email string) error {
	viper.Set("service.token", token)
	viper.Set("service.email", email)
	return writeConfigFile()
}

// ClearSession removes the saved token, returning the client to guest mode
func ClearSession() error {
	viper.Set("service.token", "")
	viper.Set("service.email", "")
	return writeConfigFile()
}

func writeConfigFile() error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsAuthenticated returns true if a bearer token is saved
func (c *Config) IsAuthenticated() bool {
	return c.Service.Token != ""
}

// Token returns the saved bearer token, or "" in guest mode. Config
// satisfies the auth-state contract consumed by the follow store and the
// API client.
func (c *Config) Token() string {
	return c.Service.Token
}
