package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Discovery DiscoveryConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret string
}

// DiscoveryConfig holds the tunables of the discovery pipeline.
type DiscoveryConfig struct {
	CacheTTL          time.Duration
	SupersetFactor    int
	FallbackScanLimit int
	GeoMetadataTTL    time.Duration
	UndoWindow        time.Duration
	UndoDepth         int
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DISCOVERY_CACHE_TTL", "5m")
	viper.SetDefault("DISCOVERY_SUPERSET_FACTOR", 5)
	viper.SetDefault("DISCOVERY_FALLBACK_SCAN_LIMIT", 500)
	viper.SetDefault("GEO_METADATA_TTL", "720h")
	viper.SetDefault("SWIPE_UNDO_WINDOW", "30m")
	viper.SetDefault("SWIPE_UNDO_DEPTH", 10)
	viper.SetDefault("LOG_LEVEL", "info")

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret: viper.GetString("JWT_ACCESS_SECRET"),
		},
		Discovery: DiscoveryConfig{
			CacheTTL:          viper.GetDuration("DISCOVERY_CACHE_TTL"),
			SupersetFactor:    viper.GetInt("DISCOVERY_SUPERSET_FACTOR"),
			FallbackScanLimit: viper.GetInt("DISCOVERY_FALLBACK_SCAN_LIMIT"),
			GeoMetadataTTL:    viper.GetDuration("GEO_METADATA_TTL"),
			UndoWindow:        viper.GetDuration("SWIPE_UNDO_WINDOW"),
			UndoDepth:         viper.GetInt("SWIPE_UNDO_DEPTH"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Discovery.SupersetFactor < 1 {
		return fmt.Errorf("discovery superset factor must be at least 1")
	}
	if c.Discovery.FallbackScanLimit < 1 {
		return fmt.Errorf("discovery fallback scan limit must be at least 1")
	}
	if c.Discovery.UndoDepth < 1 {
		return fmt.Errorf("swipe undo depth must be at least 1")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
