package server

import (
	"aurachat/internal/models"
	"aurachat/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first. With a token each post reports is_liked for the caller.
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Posts per page (max 50)" default(10)
// @Success 200 {object} models.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	page, err := s.postService.ListPosts(c.UserContext(), parsePage(c), viewerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string,image=string} true "Post"
// @Success 201 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content  string  `json:"content"`
		Image    *string `json:"image"`
		ImageURL *string `json:"image_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	var image string
	if v := postImage(req.Image, req.ImageURL); v != nil {
		image = *v
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Content:  req.Content,
		ImageURL: image,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.UserContext(), postID, viewerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string,image=string} true "Fields to change"
// @Success 200 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  *string `json:"content"`
		Image    *string `json:"image"`
		ImageURL *string `json:"image_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Content:  req.Content,
		ImageURL: postImage(req.Image, req.ImageURL),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Post deleted successfully"})
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Description Likes the post, or removes the like when the caller already liked it.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeToggleResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// postImage reads the post image from "image", the key posts are serialized
// with, falling back to the older "image_url".
func postImage(image, imageURL *string) *string {
	if image != nil {
		return image
	}
	return imageURL
}
