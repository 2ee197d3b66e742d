package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"aurachat/internal/cache"
	"aurachat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, identifier string) (*models.User, error)
	GetCredentials(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User, profile *models.UserProfile) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	SetActive(ctx context.Context, id uint, active bool) error
	TouchLastSeen(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

const userStatsSelect = "users.*, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.followed_id = users.id) AS followers_count, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count, " +
	"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS posts_count"

// withStats selects the follower/following/post counters and the profile
// minus its image bytes.
func (r *userRepository) withStats(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(userStatsSelect).
		Preload("Profile", withoutAvatarBytes)
}

// GetByID returns the user with counters and profile. Results are cached;
// the password hash is never part of the cached document.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.withStats(ctx).Where("users.id = ?", id).First(&user).Error; err != nil {
			return lookupError(err, "User", id)
		}
		user.Password = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCredentials loads the bare user row including the password hash, bypassing the cache.
func (r *userRepository) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByLogin resolves a login identifier, which may be a username or an email.
func (r *userRepository) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

// Create inserts the user and its profile atomically. A unique violation on
// either table rolls both back and surfaces as CONFLICT.
func (r *userRepository) Create(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = models.NewDefaultProfile(user.ID, "")
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.updateColumn(ctx, id, "password", passwordHash)
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *userRepository) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	return r.updateColumn(ctx, id, "last_seen", at.UTC())
}

// Delete removes the user and everything that references it in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	var followerIDs, followedIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Follow{}).
			Where("followed_id = ?", id).
			Pluck("follower_id", &followerIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ?", id).
			Pluck("followed_id", &followedIDs).Error; err != nil {
			return err
		}

		ownPosts := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		steps := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&models.Like{}, "user_id = ? OR post_id IN (?)", []interface{}{id, ownPosts}},
			{&models.Comment{}, "user_id = ? OR post_id IN (?)", []interface{}{id, ownPosts}},
			{&models.Post{}, "user_id = ?", []interface{}{id}},
			{&models.Follow{}, "follower_id = ? OR followed_id = ?", []interface{}{id, id}},
			{&models.UserProfile{}, "user_id = ?", []interface{}{id}},
		}
		for _, s := range steps {
			if err := tx.Where(s.query, s.args...).Delete(s.model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return lookupError(err, "User", id)
	}
	// Counters of everyone on the other side of a follow edge changed too.
	affected := append(append(followerIDs, followedIDs...), id)
	cache.InvalidateUser(ctx, affected...)
	return nil
}

// Search matches query against usernames and full names, case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	users := []*models.User{}
	query = strings.TrimSpace(query)
	if query == "" {
		return users, nil
	}

	pattern := likePattern(query)
	err := r.withStats(ctx).
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
		Where(`LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(COALESCE(user_profiles.full_name, '')) LIKE ? ESCAPE '\'`, pattern, pattern).
		Where("users.is_active = ?", true).
		Order("users.username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}
	err := r.withStats(ctx).
		Order("users.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
