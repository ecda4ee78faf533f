package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Replies nest a single level:
// a comment with a non-nil ParentID must reference a top-level comment.
// Privacy and moderation status apply to the comment itself and are not
// inherited from the parent post.
type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Body      string        `gorm:"type:text;not null" json:"body"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	User      User          `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint          `gorm:"not null;index" json:"post_id"`
	ParentID  *uint         `gorm:"index" json:"parent_id,omitempty"`
	IsPrivate bool          `gorm:"not null;default:false" json:"is_private"`
	Status    ContentStatus `gorm:"type:varchar(20);not null;default:'normal'" json:"status"`
	// LikesCount is not persisted; computed at query time
	LikesCount int            `gorm:"->" json:"likes_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentLike represents a user's like of a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
