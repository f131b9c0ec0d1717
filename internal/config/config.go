package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/roomieradar/roomieradar/internal/cache"
	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const devJWTSecret = "roomieradar-dev-secret"

// Config holds runtime settings loaded from env vars.
type Config struct {
	HTTPPort    string
	Environment string
	ClientURL   string

	JWTSecret string
	JWTExpiry time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	Database  database.Config
	Redis     cache.RedisConfig
	Log       telemetry.LogConfig
	Telemetry telemetry.Config
}

// LoadDotEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load builds a Config from environment variables, falling back to defaults
// suitable for local development.
func Load() Config {
	environment := envOr("ENVIRONMENT", "development")

	logConfig := telemetry.DefaultLogConfig()
	logConfig.Level = telemetry.ParseLogLevel(envOr("LOG_LEVEL", string(logConfig.Level)))
	logConfig.Format = envOr("LOG_FORMAT", logConfig.Format)
	logConfig.Output = envOr("LOG_OUTPUT", logConfig.Output)
	logConfig.Rotation = envBool("LOG_ROTATION", logConfig.Rotation)

	otelConfig := telemetry.DefaultConfig()
	otelConfig.Environment = environment
	otelConfig.Enabled = envBool("OTEL_ENABLED", otelConfig.Enabled)
	otelConfig.OTLPEndpoint = envOr("OTEL_EXPORTER_OTLP_ENDPOINT", otelConfig.OTLPEndpoint)
	otelConfig.ServiceName = envOr("OTEL_SERVICE_NAME", otelConfig.ServiceName)
	otelConfig.ServiceVersion = envOr("SERVICE_VERSION", otelConfig.ServiceVersion)

	return Config{
		HTTPPort:    envOr("HTTP_PORT", "8080"),
		Environment: environment,
		ClientURL:   envOr("CLIENT_URL", "http://localhost:5173"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 30*24*time.Hour),

		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		Database: database.Config{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOr("DB_PORT", "5432"),
			User:            envOr("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			DBName:          envOr("DB_NAME", "roomieradar"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: cache.RedisConfig{
			Host:     envOr("REDIS_HOST", "localhost"),
			Port:     envInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			PoolSize: envInt("REDIS_POOL_SIZE", 10),
		},
		Log:       *logConfig,
		Telemetry: *otelConfig,
	}
}

// Validate checks that all required configuration is present and valid. In
// development a missing JWT secret is replaced with a fixed local one.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("HTTP_PORT %q is not a number", c.HTTPPort)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Redis.Host == "" || c.Redis.Port <= 0 {
		return fmt.Errorf("redis host and port are required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, err := strconv.Atoi(envOr(key, "")); err == nil {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(envOr(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(envOr(key, "")); err == nil {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(envOr(key, "")); err == nil {
		return value
	}
	return fallback
}
