package service

import (
	"context"
	"fmt"
	"strings"

	"aurachat/internal/cache"
	"aurachat/internal/events"
	"aurachat/internal/models"
	"aurachat/internal/notifications"
	"aurachat/internal/observability"
	"aurachat/internal/repository"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	notifier   UserNotifier
	events     events.Publisher
}

// FollowResult is returned by Follow and Unfollow.
type FollowResult struct {
	Message     string `json:"message"`
	IsFollowing bool   `json:"is_following"`
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	notifier UserNotifier,
	publisher events.Publisher,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   orNoopNotifier(notifier),
		events:     orNoopPublisher(publisher),
	}
}

// Search matches username or full name case-insensitively. A blank query
// yields an empty list. Results are cached briefly per lower-cased query.
func (s *UserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*models.User{}, nil
	}

	var users []*models.User
	err := cache.Aside(ctx, cache.SearchKey(query), &users, cache.SearchTTL, func() error {
		found, err := s.userRepo.Search(ctx, query, SearchLimit)
		if err != nil {
			return err
		}
		users = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return publicUsers(users), nil
}

func publicUsers(users []*models.User) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// GetUser returns the public view of a user plus whether viewerID follows them.
func (s *UserService) GetUser(ctx context.Context, id, viewerID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	if viewerID != 0 && viewerID != id {
		if public.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewerID, id); err != nil {
			return nil, err
		}
	}
	return public, nil
}

func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	if followerID == targetID {
		return nil, models.NewValidationError("Cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	created, err := s.followRepo.Follow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.NewValidationError("Already following this user")
	}
	observability.SocialActions.WithLabelValues("follow").Inc()

	notify(ctx, s.notifier, targetID, notifications.EventUserFollowed, map[string]any{
		"actor_id": followerID,
	})
	publish(ctx, s.events, events.New(events.UserFollowed, followerID, map[string]any{"followed_id": targetID}))

	return &FollowResult{
		Message:     fmt.Sprintf("You are now following %s", target.Username),
		IsFollowing: true,
	}, nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	removed, err := s.followRepo.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewValidationError("Not following this user")
	}
	observability.SocialActions.WithLabelValues("unfollow").Inc()

	return &FollowResult{
		Message:     fmt.Sprintf("You unfollowed %s", target.Username),
		IsFollowing: false,
	}, nil
}

func (s *UserService) Followers(ctx context.Context, userID uint, page Page) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.Followers(ctx, userID, page.Limit(), page.Offset())
	return publicUsers(users), err
}

func (s *UserService) Following(ctx context.Context, userID uint, page Page) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.Following(ctx, userID, page.Limit(), page.Offset())
	return publicUsers(users), err
}

// SetActive activates or deactivates an account.
func (s *UserService) SetActive(ctx context.Context, userID uint, active bool) (*models.User, error) {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// Delete removes the account together with its profile, posts, comments,
// likes and follow edges. Unknown IDs are NOT_FOUND.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	return s.userRepo.Delete(ctx, userID)
}

// List pages through every account in ID order. Emails stay visible; it backs
// the admin command line tool, not the public API.
func (s *UserService) List(ctx context.Context, page Page) ([]*models.User, error) {
	return s.userRepo.List(ctx, page.Limit(), page.Offset())
}

// FindByLogin resolves a username or email to an account, NOT_FOUND when unknown.
func (s *UserService) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.userRepo.GetByLogin(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", identifier)
	}
	return user, nil
}
