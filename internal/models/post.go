package models

import (
	"time"
)

// Post represents a post in the AuraChat feed.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `gorm:"size:255" json:"image"`
	UserID    uint      `gorm:"not null;index" json:"author_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is not persisted; full name of the author or the username
	AuthorName string `gorm:"->;-:migration" json:"author"`
	// AuthorUsername is not persisted; computed at query time
	AuthorUsername string `gorm:"->;-:migration" json:"author_username"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64 `gorm:"->;-:migration" json:"likes"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64 `gorm:"->;-:migration" json:"comments"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->;-:migration" json:"is_liked"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// PostPage is one page of posts plus the totals the client needs to paginate.
type PostPage struct {
	Posts       []*Post `json:"posts"`
	Total       int64   `json:"total"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"current_page"`
}

// NewPostPage computes the page count for total items split into perPage-sized pages.
func NewPostPage(posts []*Post, total int64, page, perPage int) *PostPage {
	if posts == nil {
		posts = []*Post{}
	}
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &PostPage{Posts: posts, Total: total, Pages: pages, CurrentPage: page}
}

// LikeToggleResult is returned after a like toggle.
type LikeToggleResult struct {
	Message string `json:"message"`
	Likes   int64  `json:"likes"`
	IsLiked bool   `json:"is_liked"`
}
