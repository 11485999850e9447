// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"entgo.io/ent/dialect"
	"github.com/spf13/viper"
)

const (
	defaultAccessSecret  = "dev-access-secret-change-in-production"
	defaultRefreshSecret = "dev-refresh-secret-change-in-production"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Health   HealthConfig
}

type ServerConfig struct {
	GRPCPort    int
	HTTPPort    int
	Environment string
	AutoMigrate bool
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// AuthConfig controls how callers are identified.
type AuthConfig struct {
	// AllowUserIDHeader accepts a bare X-User-ID header as the caller.
	AllowUserIDHeader bool
}

type HealthConfig struct {
	ProbeInterval time.Duration
}

// Load reads configuration from the environment and, when path is not
// empty, from a config file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("environment", "development")
	dev := v.GetString("environment") == "development"

	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("auto_migrate", dev)
	v.SetDefault("db_driver", dialect.Postgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "taskboard")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "taskboard.db")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_secret", "")
	v.SetDefault("jwt_refresh_secret", "")
	v.SetDefault("jwt_access_token_duration", 15*time.Minute)
	v.SetDefault("jwt_refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("auth_allow_user_id_header", dev)
	v.SetDefault("health_probe_interval", 30*time.Second)

	return &Config{
		Server: ServerConfig{
			GRPCPort:    v.GetInt("grpc_port"),
			HTTPPort:    v.GetInt("http_port"),
			Environment: v.GetString("environment"),
			AutoMigrate: v.GetBool("auto_migrate"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("db_driver"),
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			DBName:          v.GetString("db_name"),
			SSLMode:         v.GetString("db_ssl_mode"),
			Path:            v.GetString("db_path"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret:         secret(v, "jwt_access_secret", defaultAccessSecret),
			RefreshSecret:        secret(v, "jwt_refresh_secret", defaultRefreshSecret),
			AccessTokenDuration:  v.GetDuration("jwt_access_token_duration"),
			RefreshTokenDuration: v.GetDuration("jwt_refresh_token_duration"),
		},
		Auth: AuthConfig{
			AllowUserIDHeader: v.GetBool("auth_allow_user_id_header"),
		},
		Health: HealthConfig{
			ProbeInterval: v.GetDuration("health_probe_interval"),
		},
	}, nil
}

// secret falls back to the shared JWT_SECRET, then to a development value.
func secret(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	if s := v.GetString("jwt_secret"); s != "" {
		return s
	}
	return def
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// ValidateConfig rejects settings the server cannot start with.
func (c *Config) ValidateConfig() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("HTTP_PORT must be positive, got %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 {
		return fmt.Errorf("GRPC_PORT must be positive, got %d", c.Server.GRPCPort)
	}

	switch c.Database.Driver {
	case dialect.Postgres:
		if c.Database.Port <= 0 {
			return fmt.Errorf("DB_PORT must be positive, got %d", c.Database.Port)
		}
	case dialect.SQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for %s", dialect.SQLite)
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", dialect.Postgres, dialect.SQLite, c.Database.Driver)
	}

	if c.JWT.AccessTokenDuration <= 0 || c.JWT.RefreshTokenDuration <= 0 {
		return fmt.Errorf("JWT token durations must be positive")
	}
	if c.Health.ProbeInterval < time.Second {
		return fmt.Errorf("HEALTH_PROBE_INTERVAL must be at least 1s, got %s", c.Health.ProbeInterval)
	}

	if !c.IsDevelopment() {
		if c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret {
			return fmt.Errorf("JWT secrets must be set outside development")
		}
		if c.Auth.AllowUserIDHeader {
			log.Println("[WARN] AUTH_ALLOW_USER_ID_HEADER is enabled outside development")
		}
	}
	return nil
}
