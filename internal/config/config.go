package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// The database is optional; it backs the rate-limit store when configured.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether enough settings are present to open a connection.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether published reports can be stored.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// GeminiConfig holds the generative model settings.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// ComparisonConfig controls the retry loop around the model call.
type ComparisonConfig struct {
	MaxAttempts      int
	RetryBaseDelayMs int
}

// RetryBaseDelay returns the linear backoff step.
func (c ComparisonConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// Rate-limit store kinds.
const (
	RateLimitStorePostgres = "postgres"
	RateLimitStoreMemory   = "memory"
	RateLimitStoreDisabled = "disabled"
)

// RateLimitConfig holds the per-client quota settings.
type RateLimitConfig struct {
	Store            string
	Max              int
	WindowSec        int
	Prefix           string
	PurgeIntervalSec int
	// MemoryMaxKeys caps the memory store; clients evicted past it lose their count.
	MemoryMaxKeys int
}

// Window returns the window length as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSec) * time.Second
}

// ReportConfig holds settings for published reports.
type ReportConfig struct {
	LinkTTLSec int
}

// LinkTTL returns the validity of presigned report links.
func (c ReportConfig) LinkTTL() time.Duration {
	return time.Duration(c.LinkTTLSec) * time.Second
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppEnv        string
	AppHost       string
	Port          string
	Timezone      string
	PublicHost    string
	AllowedOrigin string
	BodyLimitMB   int

	Gemini     GeminiConfig
	Comparison ComparisonConfig
	RateLimit  RateLimitConfig
	Report     ReportConfig
	Database   DatabaseConfig
	MinIO      MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	cfg := &AppConfig{
		AppEnv:        getEnv("APP_ENV", "development"),
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		PublicHost:    getEnv("PUBLIC_HOST", os.Getenv("VERCEL_URL")),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", ""),
		BodyLimitMB:   getEnvInt("BODY_LIMIT_MB", 10),
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature: getEnvFloat("GEMINI_TEMPERATURE", 0.2),
		},
		Comparison: ComparisonConfig{
			MaxAttempts:      getEnvInt("COMPARE_MAX_ATTEMPTS", 3),
			RetryBaseDelayMs: getEnvInt("COMPARE_RETRY_BASE_DELAY_MS", 500),
		},
		RateLimit: RateLimitConfig{
			Store:            strings.ToLower(getEnv("RATE_LIMIT_STORE", "")),
			Max:              getEnvInt("RATE_LIMIT_MAX", 5),
			WindowSec:        getEnvInt("RATE_LIMIT_WINDOW_SEC", 24*60*60),
			Prefix:           getEnv("RATE_LIMIT_PREFIX", "@alira_ratelimit"),
			PurgeIntervalSec: getEnvInt("RATE_LIMIT_PURGE_INTERVAL_SEC", 3600),
			MemoryMaxKeys:    getEnvInt("RATE_LIMIT_MEMORY_MAX_KEYS", 10000),
		},
		Report: ReportConfig{
			LinkTTLSec: getEnvInt("REPORT_LINK_TTL_SEC", 900),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "comparison-reports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}

	// Without an explicit store the limiter follows the database: Postgres when
	// configured, otherwise disabled.
	if cfg.RateLimit.Store == "" {
		if cfg.Database.Enabled() {
			cfg.RateLimit.Store = RateLimitStorePostgres
		} else {
			cfg.RateLimit.Store = RateLimitStoreDisabled
		}
	}
	return cfg
}

// Validate reports configuration that makes the server unable to start.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
	}
	if c.Comparison.MaxAttempts < 1 {
		errs = append(errs, errors.New("COMPARE_MAX_ATTEMPTS must be at least 1"))
	}
	switch c.RateLimit.Store {
	case RateLimitStorePostgres:
		if !c.Database.Enabled() {
			errs = append(errs, errors.New("RATE_LIMIT_STORE=postgres requires DB_HOST"))
		}
	case RateLimitStoreMemory, RateLimitStoreDisabled:
	default:
		errs = append(errs, errors.New("RATE_LIMIT_STORE must be one of postgres, memory, disabled"))
	}
	if c.RateLimit.Store != RateLimitStoreDisabled && (c.RateLimit.Max < 1 || c.RateLimit.WindowSec < 1) {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SEC must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// CORSOrigin returns the Access-Control-Allow-Origin value for API responses.
func (c *AppConfig) CORSOrigin() string {
	if c.IsProduction() && c.PublicHost != "" {
		return "https://" + c.PublicHost
	}
	if c.AllowedOrigin != "" {
		return c.AllowedOrigin
	}
	return "*"
}

// Location resolves the timezone used for log timestamps, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
