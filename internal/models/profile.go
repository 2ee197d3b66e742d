package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Theme values accepted for UserProfile.ThemePreference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Visibility values accepted for UserProfile.ProfileVisibility.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// UserProfile holds the display and preference fields of a User. Every user
// has exactly one profile row.
type UserProfile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	FullName           string    `gorm:"size:120" json:"full_name"`
	Bio                string    `gorm:"type:text" json:"bio"`
	AvatarData         []byte    `json:"avatar_data"`
	AvatarMimeType     string    `gorm:"column:avatar_mimetype;size:50" json:"avatar_mimetype,omitempty"`
	AvatarURL          string    `gorm:"-" json:"avatar_url,omitempty"`
	Location           string    `gorm:"size:100" json:"location"`
	Website            string    `gorm:"size:255" json:"website"`
	ThemePreference    string    `gorm:"size:20;not null;default:'light'" json:"theme_preference"`
	Language           string    `gorm:"size:10;not null;default:'en'" json:"language"`
	Timezone           string    `gorm:"size:50" json:"timezone"`
	ProfileVisibility  string    `gorm:"size:20;not null;default:'public'" json:"profile_visibility"`
	EmailNotifications bool      `gorm:"not null;default:true" json:"email_notifications"`
	CustomStatus       string    `gorm:"size:200" json:"custom_status"`
	BirthDate          *Date     `json:"birth_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}

// NewDefaultProfile returns the profile created alongside a new account.
func NewDefaultProfile(userID uint, fullName string) *UserProfile {
	return &UserProfile{
		UserID:             userID,
		FullName:           fullName,
		ThemePreference:    ThemeLight,
		Language:           "en",
		ProfileVisibility:  VisibilityPublic,
		EmailNotifications: true,
	}
}

// HasAvatar reports whether an avatar image is stored. Only the MIME type is
// checked so it also holds for rows loaded without the image bytes.
func (p *UserProfile) HasAvatar() bool {
	return p != nil && p.AvatarMimeType != ""
}

// AvatarPath is the public URL serving a user's avatar.
func AvatarPath(userID uint) string {
	return "/api/profile/avatar/" + strconv.FormatUint(uint64(userID), 10)
}

// AfterFind fills AvatarURL so clients can fetch the image without the bytes.
func (p *UserProfile) AfterFind(*gorm.DB) error {
	if p.AvatarMimeType != "" {
		p.AvatarURL = AvatarPath(p.UserID)
	} else {
		p.AvatarURL = ""
	}
	return nil
}

// Settings is the preference subset exposed by /api/profile/settings.
type Settings struct {
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	EmailNotifications bool   `json:"email_notifications"`
	ProfileVisibility  string `json:"profile_visibility"`
}

// DefaultSettings are reported for users that somehow lack a profile row.
func DefaultSettings() Settings {
	return Settings{
		Theme:              ThemeLight,
		Language:           "en",
		EmailNotifications: true,
		ProfileVisibility:  VisibilityPublic,
	}
}

// Settings extracts the preference subset of the profile.
func (p *UserProfile) Settings() Settings {
	if p == nil {
		return DefaultSettings()
	}
	return Settings{
		Theme:              p.ThemePreference,
		Language:           p.Language,
		EmailNotifications: p.EmailNotifications,
		ProfileVisibility:  p.ProfileVisibility,
	}
}
