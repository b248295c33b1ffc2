package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. REGISTRY_SERVER_PORT.
const EnvPrefix = "REGISTRY"

// Keys without a default must be bound explicitly for Unmarshal to see them.
var envOnlyKeys = []string{
	"database.url",
	"cache.redis_url",
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory and REGISTRY_* environment variables. Environment
// variables take precedence over values from the config file.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit config file path. Unlike Load, a missing
// file is an error.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is empty")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("photo.max_bytes", 5<<20)
}
