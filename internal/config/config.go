// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "aurachat-jwt-fallback-key"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env                      string `mapstructure:"APP_ENV"`
	Port                     string `mapstructure:"PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours           int    `mapstructure:"JWT_EXPIRY_HOURS"`
	AllowedOrigins           string `mapstructure:"ALLOWED_ORIGINS"`
	MaxContentLength         int    `mapstructure:"MAX_CONTENT_LENGTH"`
	AvatarAllowedExtensions  string `mapstructure:"AVATAR_ALLOWED_EXTENSIONS"`
	AvatarSize               int    `mapstructure:"AVATAR_SIZE"`
	FeatureFlags             string `mapstructure:"FEATURE_FLAGS"`
	KafkaBrokers             string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic               string `mapstructure:"KAFKA_TOPIC"`
	OTelExporter             string `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint             string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	DevBootstrapDemo         bool   `mapstructure:"DEV_BOOTSTRAP_DEMO"`
	DevDemoUsername          string `mapstructure:"DEV_DEMO_USERNAME"`
	DevDemoEmail             string `mapstructure:"DEV_DEMO_EMAIL"`
	DevDemoPassword          string `mapstructure:"DEV_DEMO_PASSWORD"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults registers development defaults with viper.
func SetDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("DATABASE_URL", "sqlite://aurachat.db")
	viper.SetDefault("DB_SCHEMA_MODE", "auto")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MAX_CONTENT_LENGTH", 16*1024*1024)
	viper.SetDefault("AVATAR_ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif")
	viper.SetDefault("AVATAR_SIZE", 200)
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "aurachat.events")
	viper.SetDefault("OTEL_EXPORTER", "none")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("DEV_BOOTSTRAP_DEMO", false)
	viper.SetDefault("DEV_DEMO_USERNAME", "aura_demo")
	viper.SetDefault("DEV_DEMO_EMAIL", "demo@aurachat.local")
	viper.SetDefault("DEV_DEMO_PASSWORD", "")
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
}

// IsProduction reports whether the config describes a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AllowedAvatarExtensions returns the configured upload extensions, lowercased and without dots.
func (c *Config) AllowedAvatarExtensions() []string {
	raw := c.AvatarAllowedExtensions
	if raw == "" {
		raw = "png,jpg,jpeg,gif"
	}
	var out []string
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// KafkaBrokerList splits KAFKA_BROKERS into host:port entries.
func (c *Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTExpiryHours < 0 {
		return errors.New("JWT_EXPIRY_HOURS must not be negative")
	}
	if c.AvatarSize < 0 || c.AvatarSize > 2048 {
		return errors.New("AVATAR_SIZE must be between 0 and 2048")
	}
	switch c.DBSchemaMode {
	case "", "auto", "sql", "hybrid":
	default:
		return fmt.Errorf("DB_SCHEMA_MODE %q is not one of auto, sql, hybrid", c.DBSchemaMode)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.HasPrefix(c.DatabaseURL, "sqlite") {
			return errors.New("DATABASE_URL must point at PostgreSQL in production")
		}
		if c.AllowedOrigins == "*" {
			return errors.New("ALLOWED_ORIGINS must not be '*' in production")
		}
		if c.DevBootstrapDemo {
			return errors.New("DEV_BOOTSTRAP_DEMO must be disabled in production")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
