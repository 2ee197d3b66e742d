package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		Port:           "5000",
		DatabaseURL:    "sqlite://aurachat.db",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
		JWTExpiryHours: 24,
		AvatarSize:     200,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Development defaults", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Missing database URL", func(c *Config) { c.DatabaseURL = "" }, true},
		{"Negative expiry", func(c *Config) { c.JWTExpiryHours = -1 }, true},
		{"Oversized avatar", func(c *Config) { c.AvatarSize = 4096 }, true},
		{"Unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }, true},
		{"Hybrid schema mode", func(c *Config) { c.DBSchemaMode = "hybrid" }, false},
		{"Production with sqlite", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "sqlite://prod.db"
		}, true},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "postgres://u:p@db:5432/aura"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "prod"
			c.DatabaseURL = "postgres://u:p@db:5432/aura"
			c.JWTSecret = "short"
		}, true},
		{"Production with wildcard CORS", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "postgres://u:p@db:5432/aura"
			c.AllowedOrigins = "*"
		}, true},
		{"Production with demo bootstrap", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "postgres://u:p@db:5432/aura"
			c.DevBootstrapDemo = true
		}, true},
		{"Production with postgres", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "postgres://u:p@db:5432/aura"
			c.AllowedOrigins = "https://aurachat.app"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_AllowedAvatarExtensions(t *testing.T) {
	c := &Config{AvatarAllowedExtensions: " PNG, .jpg ,jpeg,, gif"}
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif"}, c.AllowedAvatarExtensions())

	empty := &Config{}
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif"}, empty.AllowedAvatarExtensions())
}

func TestConfig_KafkaBrokerList(t *testing.T) {
	c := &Config{KafkaBrokers: "kafka-1:9092, kafka-2:9092,"}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.KafkaBrokerList())
	assert.Empty(t, (&Config{}).KafkaBrokerList())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("DB_SCHEMA_MODE", "  AUTO ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "sqlite://file::memory:", c.DatabaseURL)
	assert.Equal(t, "auto", c.DBSchemaMode)
	assert.Equal(t, 24, c.JWTExpiryHours)
	assert.Equal(t, 200, c.AvatarSize)
	assert.Equal(t, 16*1024*1024, c.MaxContentLength)
}
