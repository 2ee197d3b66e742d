// Package bootstrap opens the process-wide database and Redis handles.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"aurachat/internal/cache"
	"aurachat/internal/config"
	"aurachat/internal/database"
	"aurachat/internal/repository"
	"aurachat/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database (applying the schema policy) and to
// Redis. A missing or unreachable Redis yields a nil client, not an error.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if err := EnsureDemoUser(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development demo user: %w", err)
	}

	return db, rdb, nil
}

// EnsureDemoUser registers the DEV_DEMO_* account in development when
// DEV_BOOTSTRAP_DEMO is set. An existing account is left untouched.
func EnsureDemoUser(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapDemo {
		return nil
	}

	username := strings.TrimSpace(cfg.DevDemoUsername)
	if username == "" {
		username = "aura_demo"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevDemoEmail))
	if email == "" {
		email = "demo@aurachat.local"
	}
	if cfg.DevDemoPassword == "" {
		return fmt.Errorf("DEV_DEMO_PASSWORD must be set when DEV_BOOTSTRAP_DEMO is enabled")
	}

	users := repository.NewUserRepository(db)
	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("development demo user already present", slog.String("username", username))
		return nil
	}

	auth := service.NewAuthService(users, service.AuthConfig{JWTSecret: cfg.JWTSecret}, nil, nil)
	result, err := auth.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    email,
		Password: cfg.DevDemoPassword,
		FullName: "AuraChat Demo",
	})
	if err != nil {
		return err
	}

	slog.Info("development demo user created",
		slog.Uint64("user_id", uint64(result.User.ID)),
		slog.String("email", email))
	return nil
}
