package models

import (
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is not persisted; computed at query time
	AuthorName string `gorm:"->;-:migration" json:"author"`
	// AuthorUsername is not persisted; computed at query time
	AuthorUsername string `gorm:"->;-:migration" json:"author_username"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}
