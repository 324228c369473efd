package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-frontdoor/internal/config"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STYTCH_PROJECT_ID", "project-test-1")
	t.Setenv("STYTCH_SECRET", "secret-test-1")
}

func TestNew_FailsWithoutCredentials(t *testing.T) {
	t.Setenv("STYTCH_PROJECT_ID", "")
	t.Setenv("STYTCH_SECRET", "")

	_, err := config.New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "project id or secret")
}

func TestNew_FailsWithoutSecret(t *testing.T) {
	t.Setenv("STYTCH_PROJECT_ID", "project-test-1")
	t.Setenv("STYTCH_SECRET", "")

	_, err := config.New()
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "https://test.stytch.com", c.GetAuthorityBaseURL())
	require.Equal(t, 10*time.Second, c.GetAuthorityTimeout())
	require.Equal(t, time.Minute, c.GetSessionInactivityTimeout())
	require.Equal(t, "frontdoor", c.GetRedisKeyPrefix())
	require.Empty(t, c.GetRedisAddr())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestNew_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_INACTIVITY_TIMEOUT", "15m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":8081", c.GetPort())
	require.Equal(t, 15*time.Minute, c.GetSessionInactivityTimeout())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.Equal(t, "project-test-1", c.GetProjectID())
}
