package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"API_BASE_URL", "API_TIMEOUT", "API_INSECURE_SKIP_VERIFY",
		"HTTP_ADDRESS", "CORS_ALLOWED_ORIGINS", "LOGIN_RATE_LIMIT",
		"SESSION_SECRET", "SESSION_COOKIE_NAME", "SESSION_TTL", "SESSION_GUARD_WAIT", "SESSION_SWEEP_SCHEDULE",
		"DATABASE_URL", "APP_ENVIRONMENT", "APP_BUILD_NUMBER", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
	// Keep .env files in the package directory out of the way
	t.Chdir(t.TempDir())
}

func TestLoad_RequiresAPIBaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.test/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.False(t, cfg.Backend.InsecureSkipVerify)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Server.LoginRatePerMin)
	assert.Equal(t, "bb_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Session.GuardWait)
	assert.Equal(t, "@every 10m", cfg.Session.SweepSchedule)
	assert.True(t, cfg.Session.SecretIsEphemeral)
	assert.Len(t, cfg.Session.Secret, 64)
	assert.Equal(t, "bloodbridge-web.sqlite", cfg.Database.URL)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.test")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_GUARD_WAIT", "250ms")
	t.Setenv("APP_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Backend.InsecureSkipVerify)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, cfg.Server.LoginRatePerMin)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.False(t, cfg.Session.SecretIsEphemeral)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.GuardWait)
	assert.Equal(t, "production", cfg.App.Environment)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad timeout", "API_TIMEOUT", "soon"},
		{"negative ttl", "SESSION_TTL", "-1h"},
		{"zero guard wait", "SESSION_GUARD_WAIT", "0s"},
		{"bad rate", "LOGIN_RATE_LIMIT", "many"},
		{"zero rate", "LOGIN_RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("API_BASE_URL", "https://api.example.test")
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}
