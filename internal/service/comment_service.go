package service

import (
	"context"
	"strings"

	"aurachat/internal/models"
	"aurachat/internal/notifications"
	"aurachat/internal/observability"
	"aurachat/internal/repository"
	"aurachat/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    UserNotifier
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier UserNotifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    orNoopNotifier(notifier),
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateContent("Content", content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.SocialActions.WithLabelValues("comment").Inc()

	if post.UserID != in.UserID {
		notify(ctx, s.notifier, post.UserID, notifications.EventCommentCreated, map[string]any{
			"post_id":    in.PostID,
			"comment_id": comment.ID,
			"actor_id":   in.UserID,
		})
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the comments of a post, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment removes a comment. The comment must belong to the given post
// and only its author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.PostID != in.PostID {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, in.CommentID)
}
