package repository

import (
	"context"

	"aurachat/internal/cache"
	"aurachat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, int64, error)
	Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const postDetailsSelect = "posts.*, " +
	"COALESCE(NULLIF(user_profiles.full_name, ''), users.username) AS author_name, " +
	"users.username AS author_username, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

// withDetails selects the author and counters, plus whether viewerID liked
// the post when a viewer is known.
func (r *postRepository) withDetails(ctx context.Context, viewerID uint) *gorm.DB {
	db := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = posts.user_id")
	if viewerID != 0 {
		return db.Select(postDetailsSelect+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(postDetailsSelect + ", FALSE AS liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", post.UserID)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

// GetByID returns the post with author and counters. Anonymous reads are
// cached; per-viewer reads are not since is_liked differs per user.
func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	load := func() error {
		if err := r.withDetails(ctx, viewerID).Where("posts.id = ?", id).First(&post).Error; err != nil {
			return lookupError(err, "Post", id)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// page runs the shared count + newest-first listing for a filtered post query.
func (r *postRepository) page(ctx context.Context, viewerID uint, limit, offset int, scope func(*gorm.DB) *gorm.DB) ([]*models.Post, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Post{})).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []*models.Post{}
	if total == 0 {
		return posts, 0, nil
	}
	err := scope(r.withDetails(ctx, viewerID)).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	return r.page(ctx, viewerID, limit, offset, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	return r.page(ctx, viewerID, limit, offset, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", userID)
	})
}

// Feed lists posts by the user and everyone they follow.
func (r *postRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	return r.page(ctx, userID, limit, offset, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ? OR posts.user_id IN (?)", userID, followed)
	})
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("content", "image_url").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post with its likes and comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var authorID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").First(&post, id).Error; err != nil {
			return err
		}
		authorID = post.UserID
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return lookupError(err, "Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateUser(ctx, authorID)
	return nil
}

// Like inserts the like row. It reports false when the like already existed.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return false, models.NewNotFoundError("Post", postID)
		}
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected > 0, nil
}

// Unlike removes the like row. It reports false when there was nothing to remove.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
