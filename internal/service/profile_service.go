package service

import (
	"context"
	"strings"

	"aurachat/internal/featureflags"
	"aurachat/internal/models"
	"aurachat/internal/repository"
	"aurachat/internal/validation"
)

// ProfileUpdate lists the editable profile fields. A nil pointer leaves the
// field unchanged; BirthDate set to "" clears it.
type ProfileUpdate struct {
	FullName           *string `json:"full_name"`
	Bio                *string `json:"bio"`
	Location           *string `json:"location"`
	Website            *string `json:"website"`
	Language           *string `json:"language"`
	Timezone           *string `json:"timezone"`
	ProfileVisibility  *string `json:"profile_visibility"`
	EmailNotifications *bool   `json:"email_notifications"`
	CustomStatus       *string `json:"custom_status"`
	BirthDate          *string `json:"birth_date"`
	ThemePreference    *string `json:"theme_preference"`
}

// SettingsUpdate is the payload of PUT /api/profile/settings.
type SettingsUpdate struct {
	Theme              *string `json:"theme"`
	Language           *string `json:"language"`
	EmailNotifications *bool   `json:"email_notifications"`
	ProfileVisibility  *string `json:"profile_visibility"`
}

// AvatarUpload is a file received from a multipart form.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ProfileService manages profile fields, preferences and the avatar image.
type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	avatars  *AvatarProcessor
	flags    *featureflags.Manager
}

func NewProfileService(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	avatars *AvatarProcessor,
	flags *featureflags.Manager,
) *ProfileService {
	if avatars == nil {
		avatars = NewAvatarProcessor(nil)
	}
	return &ProfileService{profiles: profiles, users: users, avatars: avatars, flags: flags}
}

// GetProfile returns the user document of userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func textRule(field string, max int) func(string) error {
	return func(v string) error { return validation.ValidateMaxLength(field, v, max) }
}

// UpdateProfile validates every provided field and applies them together.
// When avatar is non-nil it is processed like UploadAvatar in the same update.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate, avatar *AvatarUpload) (*models.UserProfile, error) {
	fields := map[string]interface{}{}

	texts := []struct {
		column string
		value  *string
		check  func(string) error
	}{
		{"full_name", in.FullName, textRule("full_name", 120)},
		{"bio", in.Bio, textRule("bio", 500)},
		{"location", in.Location, textRule("location", 100)},
		{"website", in.Website, validation.ValidateWebsite},
		{"language", in.Language, textRule("language", 10)},
		{"timezone", in.Timezone, textRule("timezone", 50)},
		{"custom_status", in.CustomStatus, textRule("custom_status", 200)},
		{"profile_visibility", in.ProfileVisibility, validation.ValidateVisibility},
		{"theme_preference", in.ThemePreference, validation.ValidateTheme},
	}
	for _, f := range texts {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if err := f.check(v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields[f.column] = v
	}

	if in.EmailNotifications != nil {
		fields["email_notifications"] = *in.EmailNotifications
	}
	if in.BirthDate != nil {
		if raw := strings.TrimSpace(*in.BirthDate); raw == "" {
			fields["birth_date"] = nil
		} else {
			d, err := models.ParseDate(raw)
			if err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			fields["birth_date"] = d
		}
	}
	if avatar != nil {
		data, err := s.avatars.Process(avatar.Filename, avatar.ContentType, avatar.Content)
		if err != nil {
			return nil, err
		}
		fields["avatar_data"] = data
		fields["avatar_mimetype"] = AvatarMimeType
	}

	return s.profiles.Update(ctx, userID, fields)
}

// UpdateTheme sets the theme preference, which must be light or dark.
func (s *ProfileService) UpdateTheme(ctx context.Context, userID uint, theme string) (string, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return "", models.NewValidationError("theme is required")
	}
	if err := validation.ValidateTheme(theme); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if _, err := s.profiles.Update(ctx, userID, map[string]interface{}{"theme_preference": theme}); err != nil {
		return "", err
	}
	return theme, nil
}

func (s *ProfileService) GetSettings(ctx context.Context, userID uint) (models.Settings, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	return profile.Settings(), nil
}

func (s *ProfileService) UpdateSettings(ctx context.Context, userID uint, in SettingsUpdate) (models.Settings, error) {
	fields := map[string]interface{}{}
	if in.Theme != nil {
		if err := validation.ValidateTheme(*in.Theme); err != nil {
			return models.Settings{}, models.NewValidationError(err.Error())
		}
		fields["theme_preference"] = *in.Theme
	}
	if in.ProfileVisibility != nil {
		if err := validation.ValidateVisibility(*in.ProfileVisibility); err != nil {
			return models.Settings{}, models.NewValidationError(err.Error())
		}
		fields["profile_visibility"] = *in.ProfileVisibility
	}
	if in.Language != nil {
		lang := strings.TrimSpace(*in.Language)
		if lang == "" {
			return models.Settings{}, models.NewValidationError("language must not be empty")
		}
		if err := validation.ValidateMaxLength("language", lang, 10); err != nil {
			return models.Settings{}, models.NewValidationError(err.Error())
		}
		fields["language"] = lang
	}
	if in.EmailNotifications != nil {
		fields["email_notifications"] = *in.EmailNotifications
	}

	profile, err := s.profiles.Update(ctx, userID, fields)
	if err != nil {
		return models.Settings{}, err
	}
	return profile.Settings(), nil
}

// UploadAvatar processes and stores a new avatar, returning the stored JPEG.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uint, in AvatarUpload) ([]byte, error) {
	data, err := s.avatars.Process(in.Filename, in.ContentType, in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetAvatar(ctx, userID, data, AvatarMimeType); err != nil {
		return nil, err
	}
	return data, nil
}

// GetAvatar returns the stored avatar. format "webp" converts it when the
// webp_avatars flag is on; otherwise the stored bytes are returned as is.
func (s *ProfileService) GetAvatar(ctx context.Context, userID uint, format string) ([]byte, string, error) {
	data, mimeType, err := s.profiles.GetAvatar(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if strings.EqualFold(format, "webp") && s.flags.EnabledGlobally(featureflags.WebPAvatars) {
		converted, err := s.avatars.ToWebP(data)
		if err != nil {
			return nil, "", err
		}
		return converted, WebPMimeType, nil
	}
	if mimeType == "" {
		mimeType = AvatarMimeType
	}
	return data, mimeType, nil
}

func (s *ProfileService) DeleteAvatar(ctx context.Context, userID uint) error {
	return s.profiles.ClearAvatar(ctx, userID)
}
