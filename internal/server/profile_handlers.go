package server

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"aurachat/internal/models"
	"aurachat/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/profile
// @Summary Update profile
// @Description Accepts JSON or multipart/form-data. A multipart request may carry an avatar file.
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var (
		in     service.ProfileUpdate
		avatar *service.AvatarUpload
	)

	if form, err := c.MultipartForm(); err == nil {
		in = profileUpdateFromForm(form)
		if files := form.File["avatar"]; len(files) > 0 && files[0].Filename != "" {
			upload, err := s.readAvatar(files[0])
			if err != nil {
				return mapServiceError(c, err)
			}
			avatar = upload
		}
	} else if err := parseBody(c, &in); err != nil {
		return nil
	}

	profile, err := s.profileService.UpdateProfile(c.UserContext(), currentUserID(c), in, avatar)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// profileUpdateFromForm copies the recognised form fields. Fields absent from
// the form stay nil and are left unchanged.
func profileUpdateFromForm(form *multipart.Form) service.ProfileUpdate {
	field := func(name string) *string {
		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}

	in := service.ProfileUpdate{
		FullName:          field("full_name"),
		Bio:               field("bio"),
		Location:          field("location"),
		Website:           field("website"),
		Language:          field("language"),
		Timezone:          field("timezone"),
		ProfileVisibility: field("profile_visibility"),
		CustomStatus:      field("custom_status"),
		BirthDate:         field("birth_date"),
		ThemePreference:   field("theme_preference"),
	}
	if raw := field("email_notifications"); raw != nil {
		v := parseFormBool(*raw)
		in.EmailNotifications = &v
	}
	return in
}

func parseFormBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true
	}
	v, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return v
}

// readAvatar loads an uploaded file, bounded by the configured body limit.
func (s *Server) readAvatar(fh *multipart.FileHeader) (*service.AvatarUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Invalid avatar upload")
	}
	defer func() { _ = f.Close() }()

	limit := int64(s.config.MaxContentLength)
	if limit <= 0 {
		limit = 16 * 1024 * 1024
	}
	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, models.NewValidationError("Invalid avatar upload")
	}
	if int64(len(content)) > limit {
		return nil, models.NewValidationError("Avatar file is too large")
	}
	return &service.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// UpdateTheme handles PUT /api/profile/theme
// @Summary Update theme preference
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{theme=string} true "light or dark"
// @Success 200 {object} object{message=string,theme=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/theme [put]
func (s *Server) UpdateTheme(c *fiber.Ctx) error {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	theme, err := s.profileService.UpdateTheme(c.UserContext(), currentUserID(c), req.Theme)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Theme updated successfully",
		"theme":   theme,
	})
}

// UploadAvatar handles POST /api/profile/avatar
// @Summary Upload avatar
// @Description The image is resized to a square JPEG before it is stored.
// @Tags profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "PNG, JPG, JPEG or GIF image"
// @Success 200 {object} object{message=string,avatar_data=string,avatar_mimetype=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/avatar [post]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No avatar file provided"))
	}
	if fh.Filename == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file selected"))
	}

	upload, err := s.readAvatar(fh)
	if err != nil {
		return mapServiceError(c, err)
	}
	data, err := s.profileService.UploadAvatar(c.UserContext(), currentUserID(c), *upload)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":         "Avatar uploaded successfully",
		"avatar_data":     base64.StdEncoding.EncodeToString(data),
		"avatar_mimetype": service.AvatarMimeType,
	})
}

// GetAvatar handles GET /api/profile/avatar/:userId
// @Summary Avatar image
// @Description Raw image bytes. format=webp returns WebP when the webp_avatars flag is on.
// @Tags profile
// @Produce image/jpeg,image/webp
// @Param userId path int true "User ID"
// @Param format query string false "webp"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/avatar/{userId} [get]
func (s *Server) GetAvatar(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	data, mimeType, err := s.profileService.GetAvatar(c.UserContext(), userID, c.Query("format"))
	if err != nil {
		return mapServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(data)
}

// DeleteAvatar handles DELETE /api/profile/avatar
// @Summary Remove avatar
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Router /profile/avatar [delete]
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	if err := s.profileService.DeleteAvatar(c.UserContext(), currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Avatar deleted successfully"})
}

// GetSettings handles GET /api/profile/settings
// @Summary User settings
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{settings=models.Settings}
// @Router /profile/settings [get]
func (s *Server) GetSettings(c *fiber.Ctx) error {
	settings, err := s.profileService.GetSettings(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// UpdateSettings handles PUT /api/profile/settings
// @Summary Update settings
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SettingsUpdate true "Settings"
// @Success 200 {object} object{message=string,settings=models.Settings}
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/settings [put]
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var in service.SettingsUpdate
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	settings, err := s.profileService.UpdateSettings(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}
