package repository

import (
	"context"

	"aurachat/internal/cache"
	"aurachat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the follower graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error)
	Following(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow adds the edge and reports whether it was new.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowedID: followedID})
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return false, models.NewNotFoundError("User", followedID)
		}
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUser(ctx, followerID, followedID)
	}
	return res.RowsAffected > 0, nil
}

// Unfollow removes the edge and reports whether one existed.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUser(ctx, followerID, followedID)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) listUsers(ctx context.Context, joinOn, whereCol string, userID uint, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(userStatsSelect).
		Preload("Profile", withoutAvatarBytes).
		Joins("JOIN follows ON follows."+joinOn+" = users.id").
		Where("follows."+whereCol+" = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Followers lists the users following userID, most recent first.
func (r *followRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return r.listUsers(ctx, "follower_id", "followed_id", userID, limit, offset)
}

// Following lists the users userID follows, most recent first.
func (r *followRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return r.listUsers(ctx, "followed_id", "follower_id", userID, limit, offset)
}
