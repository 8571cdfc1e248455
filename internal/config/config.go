// Package config loads the bunquery server configuration from an optional
// .env file and BUNQUERY_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "BUNQUERY_"

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port              string `mapstructure:"port"`
	CORSOrigin        string `mapstructure:"cors_origin"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
}

type StoreConfig struct {
	// Driver selects the collection backend: "memory" or "sqlite".
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file; ignored for the memory driver.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration. Environment variables override the .env
// file; the .env file is optional. BUNQUERY_SERVER_PORT maps to server.port,
// and so on.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "3020")
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.requests_per_minute", 600)
	v.SetDefault("server.burst", 60)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "./data/bunquery.db")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "json")

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read .env: %w", err)
			}
		}
	}

	// Viper's AutomaticEnv does not surface unknown keys through Unmarshal,
	// so prefixed variables are set explicitly: BUNQUERY_STORE_DRIVER becomes
	// store.driver.
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if !strings.HasPrefix(key, envPrefix) {
			continue
		}
		propKey := strings.TrimPrefix(key, envPrefix)
		propKey = strings.ToLower(strings.Replace(propKey, "_", ".", 1))
		v.Set(propKey, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
