package server

import (
	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?q=
// @Summary Search users
// @Description Case-insensitive match on username or full name, at most 20 results.
// @Tags users
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} object{users=[]models.User,query=string}
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")

	users, err := s.userService.Search(c.UserContext(), query)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"query": query,
	})
}

// GetUser handles GET /api/users/:id
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	user, err := s.userService.GetUser(c.UserContext(), userID, viewerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Posts per page (max 50)" default(10)
// @Success 200 {object} service.UserPosts
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	posts, err := s.postService.UserPosts(c.UserContext(), userID, parsePage(c), viewerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Users per page (max 50)" default(10)
// @Success 200 {object} object{users=[]models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Followers(c.UserContext(), userID, parsePage(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users followed by a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Users per page (max 50)" default(10)
// @Success 200 {object} object{users=[]models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Following(c.UserContext(), userID, parsePage(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} service.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.userService.Follow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} service.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.userService.Unfollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// GetFeed handles GET /api/users/me/feed
// @Summary Personal feed
// @Description Posts by the caller and by everyone they follow, newest first.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Posts per page (max 50)" default(10)
// @Success 200 {object} models.PostPage
// @Router /users/me/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.postService.Feed(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(page)
}
