package server

import (
	"aurachat/internal/models"
	"aurachat/internal/service"

	"github.com/gofiber/fiber/v2"
)

// authResponse is the body of register, login and refresh.
type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Create an account with a default profile and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,full_name=string} true "Registration request"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{
		Message: "User created successfully",
		Token:   res.Token,
		User:    res.User,
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with a username or email and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	res, err := s.authService.Login(c.UserContext(), identifier, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(authResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), currentClaims(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Logout successful"})
}

// ChangePassword handles POST /api/auth/change-password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{current_password=string,new_password=string} true "Passwords"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.ChangePassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Password changed successfully"})
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh token
// @Description Issue a new token and revoke the presented one
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} authResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	res, err := s.authService.Refresh(c.UserContext(), currentClaims(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(authResponse{
		Message: "Token refreshed",
		Token:   res.Token,
		User:    res.User,
	})
}
