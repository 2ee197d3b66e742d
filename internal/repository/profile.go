package repository

import (
	"context"

	"aurachat/internal/cache"
	"aurachat/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository reads and writes the 1:1 profile row of a user.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
	Update(ctx context.Context, userID uint, fields map[string]interface{}) (*models.UserProfile, error)
	SetAvatar(ctx context.Context, userID uint, data []byte, mimeType string) error
	ClearAvatar(ctx context.Context, userID uint) error
	GetAvatar(ctx context.Context, userID uint) ([]byte, string, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetByUserID returns the full profile, avatar bytes included. A user that
// somehow lacks a profile row gets a default one created on first access.
func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		Attrs(*models.NewDefaultProfile(userID, "")).
		FirstOrCreate(&profile).Error
	if err != nil {
		if isForeignKeyError(err) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

// Update applies the given column values and returns the refreshed profile.
func (r *profileRepository) Update(ctx context.Context, userID uint, fields map[string]interface{}) (*models.UserProfile, error) {
	if _, err := r.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
			Where("user_id = ?", userID).
			Updates(fields).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		cache.InvalidateUser(ctx, userID)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) SetAvatar(ctx context.Context, userID uint, data []byte, mimeType string) error {
	_, err := r.Update(ctx, userID, map[string]interface{}{
		"avatar_data":     data,
		"avatar_mimetype": mimeType,
	})
	return err
}

func (r *profileRepository) ClearAvatar(ctx context.Context, userID uint) error {
	_, err := r.Update(ctx, userID, map[string]interface{}{
		"avatar_data":     nil,
		"avatar_mimetype": "",
	})
	return err
}

// GetAvatar returns the stored image and its MIME type, or NOT_FOUND when none is set.
func (r *profileRepository) GetAvatar(ctx context.Context, userID uint) ([]byte, string, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Select("user_id", "avatar_data", "avatar_mimetype").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, "", lookupError(err, "Avatar", nil)
	}
	if len(profile.AvatarData) == 0 || profile.AvatarMimeType == "" {
		return nil, "", models.NewNotFoundError("Avatar", nil)
	}
	return profile.AvatarData, profile.AvatarMimeType, nil
}
