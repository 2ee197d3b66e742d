package service

import (
	"context"
	"strings"

	"aurachat/internal/events"
	"aurachat/internal/models"
	"aurachat/internal/notifications"
	"aurachat/internal/observability"
	"aurachat/internal/repository"
	"aurachat/internal/validation"
)

const (
	msgPostLiked   = "Post liked successfully"
	msgPostUnliked = "Post unliked successfully"
	maxImageURLLen = 255
)

type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	notifier UserNotifier
	events   events.Publisher
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL string
}

// UpdatePostInput carries the author's edit. Nil fields stay unchanged.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  *string
	ImageURL *string
}

// UserPosts is one page of a user's posts together with the user.
type UserPosts struct {
	*models.PostPage
	User *models.User `json:"user"`
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	notifier UserNotifier,
	publisher events.Publisher,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		notifier: orNoopNotifier(notifier),
		events:   orNoopPublisher(publisher),
	}
}

// ListPosts returns every post newest first. viewerID 0 is an anonymous reader.
func (s *PostService) ListPosts(ctx context.Context, page Page, viewerID uint) (*models.PostPage, error) {
	page = page.Normalize()
	posts, total, err := s.posts.List(ctx, page.Limit(), page.Offset(), viewerID)
	if err != nil {
		return nil, err
	}
	return models.NewPostPage(posts, total, page.Page, page.PerPage), nil
}

// Feed returns the posts of the user and of everyone they follow.
func (s *PostService) Feed(ctx context.Context, userID uint, page Page) (*models.PostPage, error) {
	page = page.Normalize()
	posts, total, err := s.posts.Feed(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	return models.NewPostPage(posts, total, page.Page, page.PerPage), nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateContent("Content", content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if err := validation.ValidateMaxLength("image", imageURL, maxImageURLLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{Content: content, ImageURL: imageURL, UserID: in.UserID}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	publish(ctx, s.events, events.New(events.PostCreated, in.UserID, map[string]any{"post_id": post.ID}))
	return s.posts.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

// UserPosts pages through the posts of userID. A missing user is NOT_FOUND.
func (s *PostService) UserPosts(ctx context.Context, userID uint, page Page, viewerID uint) (*UserPosts, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	posts, total, err := s.posts.ListByUser(ctx, userID, page.Limit(), page.Offset(), viewerID)
	if err != nil {
		return nil, err
	}
	return &UserPosts{
		PostPage: models.NewPostPage(posts, total, page.Page, page.PerPage),
		User:     user.Public(),
	}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if err := validation.ValidateContent("Content", content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = content
	}
	if in.ImageURL != nil {
		imageURL := strings.TrimSpace(*in.ImageURL)
		if err := validation.ValidateMaxLength("image", imageURL, maxImageURLLen); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.ImageURL = imageURL
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleLike likes the post when userID has not liked it yet and unlikes it
// otherwise. Liking someone else's post notifies its author.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeToggleResult, error) {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	liked, err := s.posts.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	result := &models.LikeToggleResult{}
	if liked {
		if _, err := s.posts.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
		result.Message = msgPostUnliked
		observability.SocialActions.WithLabelValues("unlike").Inc()
	} else {
		if _, err := s.posts.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
		result.Message = msgPostLiked
		result.IsLiked = true
		observability.SocialActions.WithLabelValues("like").Inc()

		if post.UserID != userID {
			notify(ctx, s.notifier, post.UserID, notifications.EventPostLiked, map[string]any{
				"post_id":  postID,
				"actor_id": userID,
			})
		}
		publish(ctx, s.events, events.New(events.PostLiked, userID, map[string]any{"post_id": postID}))
	}

	if result.Likes, err = s.posts.CountLikes(ctx, postID); err != nil {
		return nil, err
	}
	return result, nil
}
