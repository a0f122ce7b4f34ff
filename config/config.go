package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Geocoder GeocoderConfig
	Scoring  ScoringConfig
	Intake   IntakeConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	AllowedOrigins          []string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type GeocoderConfig struct {
	Enabled           bool
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
	CacheGridMeters   float64
}

// ScoringConfig carries the engine policy that is configuration rather than algorithm
type ScoringConfig struct {
	Categories          []string
	FallbackCategory    string
	ClusterRadiusMeters float64
	MajorRoadRadiusM    float64
	SignalTimeout       time.Duration
	VocabularyFile      string // optional YAML override of the location vocabulary
}

type IntakeConfig struct {
	MaxConcurrent        int
	StoreRetryAttempts   int
	StoreRetryDelay      time.Duration
	SubmissionsPerMinute int // per client IP; shared through Redis when configured
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Load loads configuration from a .env file (if present) and environment
// variables with sensible defaults
func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:          getEnvList("SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Geocoder: GeocoderConfig{
			Enabled:           getEnvBool("GEOCODER_ENABLED", true),
			BaseURL:           getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:         getEnv("GEOCODER_USER_AGENT", "CivicTriage/1.0"),
			Timeout:           getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvFloat("GEOCODER_REQUESTS_PER_SECOND", 1.0),
			CacheTTL:          getEnvDuration("GEOCODER_CACHE_TTL", 30*24*time.Hour),
			CacheGridMeters:   getEnvFloat("GEOCODER_CACHE_GRID_METERS", 25.0),
		},
		Scoring: ScoringConfig{
			Categories:          getEnvList("SCORING_CATEGORIES", []string{"pothole", "garbage", "waterleak", "others"}),
			FallbackCategory:    getEnv("SCORING_FALLBACK_CATEGORY", "others"),
			ClusterRadiusMeters: getEnvFloat("SCORING_CLUSTER_RADIUS_METERS", 50.0),
			MajorRoadRadiusM:    getEnvFloat("SCORING_MAJOR_ROAD_RADIUS_METERS", 100.0),
			SignalTimeout:       getEnvDuration("SCORING_SIGNAL_TIMEOUT", 5*time.Second),
			VocabularyFile:      getEnv("SCORING_VOCABULARY_FILE", ""),
		},
		Intake: IntakeConfig{
			MaxConcurrent:        getEnvInt("INTAKE_MAX_CONCURRENT", 16),
			StoreRetryAttempts:   getEnvInt("INTAKE_STORE_RETRY_ATTEMPTS", 2),
			StoreRetryDelay:      getEnvDuration("INTAKE_STORE_RETRY_DELAY", 200*time.Millisecond),
			SubmissionsPerMinute: getEnvInt("INTAKE_SUBMISSIONS_PER_MINUTE", 30),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration and reports every problem found
func (c *Config) Validate() error {
	var errs apperrors.MultiError

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs.Add(fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Database.MaxConns < 1 {
		errs.Add(fmt.Errorf("database max connections must be at least 1"))
	}
	if len(c.Scoring.Categories) == 0 {
		errs.Add(fmt.Errorf("at least one report category is required"))
	} else if !hasCategory(c.Scoring.Categories, c.Scoring.FallbackCategory) {
		errs.Add(fmt.Errorf("fallback category %q must be one of the configured categories", c.Scoring.FallbackCategory))
	}
	if c.Scoring.ClusterRadiusMeters <= 0 {
		errs.Add(fmt.Errorf("cluster radius must be positive"))
	}
	if c.Scoring.MajorRoadRadiusM <= 0 {
		errs.Add(fmt.Errorf("major road radius must be positive"))
	}
	if c.Intake.MaxConcurrent < 1 {
		errs.Add(fmt.Errorf("intake max concurrent must be at least 1"))
	}
	if c.Geocoder.Enabled && c.Geocoder.RequestsPerSecond <= 0 {
		errs.Add(fmt.Errorf("geocoder requests per second must be positive"))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func hasCategory(categories []string, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, cat := range categories {
		if strings.ToLower(strings.TrimSpace(cat)) == name {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated list, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
