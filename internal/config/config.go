package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Photo    PhotoConfig    `mapstructure:"photo" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel          string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	// A single "*" allows any origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"min=1,dive,required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// CacheConfig configures the optional dashboard cache.
// An empty RedisURL disables caching.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url" validate:"omitempty,url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// PhotoConfig limits photo uploads.
type PhotoConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"gt=0"`
}
