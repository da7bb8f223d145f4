// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Ledger      LedgerConfig
	Polling     PollingConfig
	Renewal     RenewalConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Sandbox     SandboxConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CORSOrigins  []string
}

// LedgerConfig points at the backend exposing app installs, licenses and renewals.
type LedgerConfig struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   int // in seconds
}

type PollingConfig struct {
	Interval time.Duration
	// SkipIfRunning drops a tick while the previous fetch of the same job is still in flight.
	SkipIfRunning bool
}

// RenewalConfig holds the values used when a renewal is initiated with only a description.
type RenewalConfig struct {
	LicenseFeeCc              float64
	LicenseExtensionDuration  string
	PaymentAcceptanceDuration string
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string

	// ConnectTimeout bounds the retries while the database comes up.
	ConnectTimeout time.Duration
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
	AdminRole      string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SandboxConfig describes the parties of the in-memory ledger.
type SandboxConfig struct {
	Port     string
	DSO      string
	Provider string
	User     string
	// AdminParty is the party whose token is treated as the provider's admin.
	AdminParty string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Ledger: LedgerConfig{
			BaseURL:   getEnv("LEDGER_API_URL", "http://localhost:8081/api"),
			Token:     getEnv("LEDGER_API_TOKEN", ""),
			UserAgent: getEnv("LEDGER_USER_AGENT", "license-console"),
			Timeout:   getEnvAsInt("LEDGER_TIMEOUT", 30),
		},
		Polling: PollingConfig{
			Interval:      getEnvAsDuration("POLL_INTERVAL", 5*time.Second),
			SkipIfRunning: getEnvAsBool("POLL_SKIP_IF_RUNNING", false),
		},
		Renewal: RenewalConfig{
			LicenseFeeCc:              getEnvAsFloat("RENEWAL_FEE_CC", 100),
			LicenseExtensionDuration:  getEnv("RENEWAL_EXTENSION", "P30D"),
			PaymentAcceptanceDuration: getEnv("RENEWAL_PAYMENT_ACCEPTANCE", "P7D"),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "license_console"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),

			ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
			AdminRole:      getEnv("JWT_ADMIN_ROLE", "admin"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Sandbox: SandboxConfig{
			Port:       getEnv("SANDBOX_PORT", "8081"),
			DSO:        getEnv("SANDBOX_DSO", "DSO::1220dso"),
			Provider:   getEnv("SANDBOX_PROVIDER", "AppProvider::1220provider"),
			User:       getEnv("SANDBOX_USER", "AppUser::1220user"),
			AdminParty: getEnv("SANDBOX_ADMIN_PARTY", "AppProvider::1220provider"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger API URL is required")
	}

	// the scheduler works in whole seconds
	if c.Polling.Interval < time.Second || c.Polling.Interval%time.Second != 0 {
		return fmt.Errorf("poll interval must be a whole number of seconds, got %s", c.Polling.Interval)
	}

	if c.Renewal.LicenseFeeCc <= 0 {
		return fmt.Errorf("renewal fee must be positive")
	}

	if c.Database.Enabled && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

func (l LedgerConfig) TimeoutDuration() time.Duration {
	return time.Duration(l.Timeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
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
	return out
}
