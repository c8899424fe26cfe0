package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                "3000",
		Env:                 "development",
		JWTSecret:           "secure-secret-at-least-32-chars-long",
		JWTTTLMinutes:       60,
		ExternalAuthSecret:  "another-secret-at-least-32-chars-long",
		DBPassword:          "secure-password",
		DBSSLMode:           "require",
		TracingSamplerRatio: 1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredAndProductionSecrets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"missing external secret", func(c *Config) { c.ExternalAuthSecret = "" }},
		{"shared legacy and external secret", func(c *Config) { c.ExternalAuthSecret = c.JWTSecret }},
		{"non-positive ttl", func(c *Config) { c.JWTTTLMinutes = 0 }},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "hybrid" }},
		{"sampler out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}},
		{"short external secret in production", func(c *Config) {
			c.Env = "production"
			c.ExternalAuthSecret = "short"
		}},
		{"weak db password in production", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_SCHEMA_MODE", " AUTO ")
	t.Setenv("PORT", "4123")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "auto", c.DBSchemaMode)
	assert.Equal(t, "4123", c.Port)
	assert.Equal(t, 60, c.JWTTTLMinutes)
	assert.True(t, strings.HasPrefix(c.UploadPlaceholderURL, "https://"))
	assert.False(t, c.IsProduction())
	assert.True(t, c.SeedLanguages)
	assert.NotEqual(t, c.JWTSecret, c.ExternalAuthSecret)
}
