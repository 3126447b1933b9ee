package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Backend API configuration
	Backend BackendConfig

	// Session configuration
	Session SessionConfig

	// Database Configuration
	Database DatabaseConfig

	// Application metadata shown in the page footer
	App AppConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address         string
	AllowedOrigins  []string
	LoginRatePerMin int
}

// BackendConfig holds the BloodBridge API configuration
type BackendConfig struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	Secret            string
	SecretIsEphemeral bool
	CookieName        string
	TTL               time.Duration
	GuardWait         time.Duration
	SweepSchedule     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AppConfig holds deployment metadata
type AppConfig struct {
	Environment string // local, test, development, production
	BuildNumber string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	apiTimeout, err := durationEnv("API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	guardWait, err := durationEnv("SESSION_GUARD_WAIT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	loginRate, err := intEnv("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	// Without a configured secret, sessions do not survive a restart
	secret := os.Getenv("SESSION_SECRET")
	ephemeral := false
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		ephemeral = true
	}

	return &Config{
		Server: ServerConfig{
			Address:         fallback(os.Getenv("HTTP_ADDRESS"), ":8080"),
			AllowedOrigins:  parseCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
			LoginRatePerMin: loginRate,
		},
		Backend: BackendConfig{
			BaseURL:            apiBaseURL,
			Timeout:            apiTimeout,
			InsecureSkipVerify: os.Getenv("API_INSECURE_SKIP_VERIFY") == "true",
		},
		Session: SessionConfig{
			Secret:            secret,
			SecretIsEphemeral: ephemeral,
			CookieName:        fallback(os.Getenv("SESSION_COOKIE_NAME"), "bb_session"),
			TTL:               sessionTTL,
			GuardWait:         guardWait,
			SweepSchedule:     fallback(os.Getenv("SESSION_SWEEP_SCHEDULE"), "@every 10m"),
		},
		Database: DatabaseConfig{
			URL: fallback(os.Getenv("DATABASE_URL"), "bloodbridge-web.sqlite"),
		},
		App: AppConfig{
			Environment: fallback(os.Getenv("APP_ENVIRONMENT"), "local"),
			BuildNumber: fallback(os.Getenv("APP_BUILD_NUMBER"), "dev"),
		},
		Logging: LoggingConfig{
			Level:  fallback(os.Getenv("LOG_LEVEL"), "info"),
			Format: fallback(os.Getenv("LOG_FORMAT"), "json"),
		},
	}, nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", name, raw)
	}
	return d, nil
}

func intEnv(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, raw)
	}
	return n, nil
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
