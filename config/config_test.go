package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFrom_Defaults checks the values a bare development environment gets.
func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Env)
	require.Equal(t, 3000, cfg.ServerPort)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "vitalwatch.sqlite", cfg.Database.DSN)
	require.Equal(t, 10*time.Second, cfg.Delivery.Timeout)
	require.Equal(t, "https://exp.host/--/api/v2/push/send", cfg.Expo.PushURL)
	require.Equal(t, developmentSecret, cfg.SecretAccessToken)
	require.True(t, cfg.usingDevelopmentSecret())
}

// TestLoadFrom_Overrides checks that env vars reach nested sections.
func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{
		"ENVIRONMENT":         "production",
		"SECRET_ACCESS_TOKEN": "s3cret",
		"SERVER_PORT":         "8080",
		"DATABASE_DRIVER":     "postgres",
		"DATABASE_DSN":        "host=db user=vw dbname=vw",
		"DELIVERY_TIMEOUT":    "3s",
		"MAILGUN_DOMAIN":      "mg.example.com",
	})
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Env)
	require.Equal(t, "s3cret", cfg.SecretAccessToken)
	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 3*time.Second, cfg.Delivery.Timeout)
	require.Equal(t, "mg.example.com", cfg.Mailgun.Domain)
	require.False(t, cfg.usingDevelopmentSecret())
}

// TestLoadFrom_Rejects covers the settings Validate refuses.
func TestLoadFrom_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"missing secret in production": {"ENVIRONMENT": "production"},
		"unknown driver":               {"DATABASE_DRIVER": "oracle"},
		"zero timeout":                 {"DELIVERY_TIMEOUT": "0s"},
		"bad port":                     {"SERVER_PORT": "-1"},
	}
	for name, environ := range cases {
		_, err := LoadFrom(environ)
		require.Error(t, err, name)
	}
}
