package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDSN     string
	JWTSecret string

	LogLevel string

	TokenTTLHours int
	RateLimitRPM  int

	// DevCredentials controls whether the registration response includes the
	// generated plaintext password. The original flow returned it in place of
	// an email-delivery step; here it is explicit and refused in prod.
	DevCredentials bool

	AuditRetentionDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = strings.TrimSpace(os.Getenv("FLEET_ENV"))
	if cfg.Env == "" {
		return nil, fmt.Errorf("FLEET_ENV is required")
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("FLEET_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("FLEET_HTTP_ADDR", ":5000")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("FLEET_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("FLEET_BASE_URL is required")
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("FLEET_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("FLEET_DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("FLEET_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("FLEET_JWT_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("FLEET_JWT_SECRET must be at least 32 characters (currently %d)", len(cfg.JWTSecret))
	}

	cfg.LogLevel = getEnvOrDefault("FLEET_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("FLEET_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	var err error
	cfg.TokenTTLHours, err = getEnvIntOrDefault("FLEET_TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if cfg.TokenTTLHours <= 0 {
		return nil, fmt.Errorf("FLEET_TOKEN_TTL_HOURS must be positive (got: %d)", cfg.TokenTTLHours)
	}

	cfg.RateLimitRPM, err = getEnvIntOrDefault("FLEET_RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, err
	}

	cfg.DevCredentials, err = getEnvBoolOrDefault("FLEET_DEV_CREDENTIALS", false)
	if err != nil {
		return nil, err
	}
	if cfg.DevCredentials && cfg.Env == "prod" {
		return nil, fmt.Errorf("FLEET_DEV_CREDENTIALS cannot be enabled in prod")
	}

	cfg.AuditRetentionDays, err = getEnvIntOrDefault("FLEET_AUDIT_RETENTION_DAYS", 180)
	if err != nil {
		return nil, err
	}
	if cfg.AuditRetentionDays <= 0 {
		return nil, fmt.Errorf("FLEET_AUDIT_RETENTION_DAYS must be positive (got: %d)", cfg.AuditRetentionDays)
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"FLEET_ENV":                  c.Env,
		"FLEET_HTTP_ADDR":            c.HTTPAddr,
		"FLEET_BASE_URL":             c.BaseURL,
		"FLEET_DB_DSN":               redactDSN(c.DBDSN),
		"FLEET_JWT_SECRET":           "[REDACTED]",
		"FLEET_LOG_LEVEL":            c.LogLevel,
		"FLEET_TOKEN_TTL_HOURS":      strconv.Itoa(c.TokenTTLHours),
		"FLEET_RATE_LIMIT_RPM":       strconv.Itoa(c.RateLimitRPM),
		"FLEET_DEV_CREDENTIALS":      strconv.FormatBool(c.DevCredentials),
		"FLEET_AUDIT_RETENTION_DAYS": strconv.Itoa(c.AuditRetentionDays),
	}
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean (got: %q)", key, value)
	}
	return parsed, nil
}
