package service

import (
	"context"
	"strings"
	"time"

	"aurachat/internal/cache"
	"aurachat/internal/events"
	"aurachat/internal/middleware"
	"aurachat/internal/models"
	"aurachat/internal/observability"
	"aurachat/internal/repository"
	"aurachat/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid username or password"

// AuthConfig carries token and hashing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService registers users, checks credentials and manages tokens.
type AuthService struct {
	users  repository.UserRepository
	cfg    AuthConfig
	rdb    *redis.Client
	events events.Publisher
}

// RegisterInput is the payload of POST /api/auth/register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig, rdb *redis.Client, publisher events.Publisher) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &AuthService{users: users, cfg: cfg, rdb: rdb, events: publisher}
}

// HashPassword hashes a plain-text password with the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { observability.AuthAttempts.WithLabelValues("register", observability.Outcome(err)).Inc() }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validation.Required("username", in.Username, "email", in.Email, "password", in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateMaxLength("full_name", in.FullName, 120); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken. Please choose a different username or login if this is your account.")
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered. Please use a different email or login if this is your account.")
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user, models.NewDefaultProfile(0, in.FullName)); err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.New(events.UserRegistered, user.ID, map[string]any{"username": user.Username}))
	return s.issue(ctx, user.ID, user.Username)
}

// Login accepts a username or an email as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (res *AuthResult, err error) {
	defer func() { observability.AuthAttempts.WithLabelValues("login", observability.Outcome(err)).Inc() }()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError(msgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is deactivated")
	}
	if err := s.users.TouchLastSeen(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID, user.Username)
}

// Me returns the caller's account. Deactivated accounts are refused.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is deactivated")
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return models.NewValidationError("Current password and new password are required")
	}
	user, err := s.users.GetCredentials(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError("New " + err.Error())
	}
	hash, err := s.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.TokenClaims) error {
	return s.revoke(ctx, claims)
}

// Refresh swaps a valid token for a new one and revokes the old token.
func (s *AuthService) Refresh(ctx context.Context, claims *middleware.TokenClaims) (*AuthResult, error) {
	user, err := s.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return res, nil
}

// IsRevoked reports whether a token id was revoked. Without Redis nothing is.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, cache.BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *middleware.TokenClaims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, cache.BlacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, userID uint, username string) (*AuthResult, error) {
	token, claims, err := middleware.IssueToken(s.cfg.JWTSecret, userID, username, s.cfg.TokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// ResetPassword sets a new password without checking the old one. It backs
// the admin command line tool.
func (s *AuthService) ResetPassword(ctx context.Context, userID uint, next string) error {
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}
	if _, err := s.users.GetCredentials(ctx, userID); err != nil {
		return err
	}
	hash, err := s.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
