package models

import (
	"time"

	"gorm.io/gorm"
)

// ContentStatus defines the moderation state of a post or comment.
type ContentStatus string

const (
	// ContentStatusNormal indicates content is in its default visible state.
	ContentStatusNormal ContentStatus = "normal"
	// ContentStatusHidden indicates content was hidden by moderation and is
	// visible only to its owner and platform admins.
	ContentStatusHidden ContentStatus = "hidden"
)

// Post represents a content item in the Campus application.
type Post struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Title    string  `gorm:"not null" json:"title"`
	Body     string  `gorm:"type:text;not null" json:"body"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	User     User    `gorm:"foreignKey:UserID" json:"user"`
	SchoolID *uint   `gorm:"index" json:"school_id,omitempty"`
	School   *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	// IsPrivate is owner-controlled: a private post is visible only to the
	// owner and platform admins, regardless of school scope.
	IsPrivate bool          `gorm:"not null;default:false" json:"is_private"`
	Status    ContentStatus `gorm:"type:varchar(20);not null;default:'normal'" json:"status"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's like of a post.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
