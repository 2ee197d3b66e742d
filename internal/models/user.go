// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in AuraChat.
type User struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Username  string       `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email     string       `gorm:"size:120;uniqueIndex;not null" json:"email,omitempty"`
	Password  string       `gorm:"size:255;not null" json:"-"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	IsAdmin   bool         `gorm:"not null;default:false" json:"is_admin,omitempty"`
	LastSeen  *time.Time   `json:"last_seen"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"-"`
	Profile   *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	// FollowersCount is not persisted; computed at query time
	FollowersCount int64 `gorm:"->;-:migration" json:"followers"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int64 `gorm:"->;-:migration" json:"following"`
	// PostsCount is not persisted; computed at query time
	PostsCount int64 `gorm:"->;-:migration" json:"posts"`
	// IsFollowing reports whether the requesting user follows this user (computed)
	IsFollowing bool `gorm:"->;-:migration" json:"is_following"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// DisplayName returns the profile full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.FullName != "" {
		return u.Profile.FullName
	}
	return u.Username
}

// Public returns a copy that is safe to show to other users: the email is
// removed and the avatar bytes are left to the avatar endpoint.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Email = ""
	out.IsAdmin = false
	if u.Profile != nil {
		p := *u.Profile
		p.AvatarData = nil
		out.Profile = &p
	}
	return &out
}
