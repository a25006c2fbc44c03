package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// CatalogConfig holds remote catalog API configuration
type CatalogConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"` // per-page ceiling, seconds
	MaxRetries           int    `mapstructure:"max_retries"`
	PageSize             int    `mapstructure:"page_size"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// StorageConfig holds the local record store configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig holds session cache configuration
type SessionConfig struct {
	TTL int `mapstructure:"ttl"` // seconds
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing config.yaml is fine: defaults plus env cover everything.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("catalog.base_url", "https://catalog.stampshowcase.example/api")
	viper.SetDefault("catalog.timeout", 30)
	viper.SetDefault("catalog.max_retries", 3)
	viper.SetDefault("catalog.page_size", 50)
	viper.SetDefault("catalog.max_requests_per_second", 10)

	viper.SetDefault("storage.path", "./data/catalog.db")

	viper.SetDefault("session.ttl", 1800)
}
