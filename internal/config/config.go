// Package config loads the gateway configuration from file and environment
// and initializes the structured logger.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Session SessionConfig `mapstructure:"session"`
	NATS    NATSConfig    `mapstructure:"nats"`
	BData   BDataConfig   `mapstructure:"bdata"`
	Query   QueryConfig   `mapstructure:"query"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
}

// SessionConfig contains the trading session credentials and transport
// parameters.
type SessionConfig struct {
	Mode string `mapstructure:"mode"` // "paper" or "live"

	Broker   string `mapstructure:"broker"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	AppID    string `mapstructure:"app_id"`
	AuthCode string `mapstructure:"auth_code"`

	Front   string `mapstructure:"front"`
	FlowDir string `mapstructure:"flow_dir"`
	DataDir string `mapstructure:"data_dir"`
	Quick   bool   `mapstructure:"quick"`
}

// NATSConfig contains the event bus settings
type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Prefix  string `mapstructure:"prefix"`
}

// BDataConfig points at the instrument reference data file
type BDataConfig struct {
	Path string `mapstructure:"path"`
}

// QueryConfig contains startup query behavior
type QueryConfig struct {
	// SnapshotOnReady fires position/account/order/trade queries once the
	// session reaches ready.
	SnapshotOnReady bool `mapstructure:"snapshot_on_ready"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("CTPGATE")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration using comprehensive validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ctpgate")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Session defaults
	v.SetDefault("session.mode", "paper")
	v.SetDefault("session.flow_dir", "./flow")
	v.SetDefault("session.data_dir", "./data")
	v.SetDefault("session.quick", true)

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.prefix", "ctpgate.")

	// Reference data defaults
	v.SetDefault("bdata.path", "./configs/bdata.yaml")

	// Query defaults
	v.SetDefault("query.snapshot_on_ready", true)
}
