package models

import "time"

// ModeratorBlock is a school-scoped suppression of an author's content,
// placed by a moderator. The block is effective only while the placing
// moderator still has authority over the school; that check happens at
// query time, not at rest.
type ModeratorBlock struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ModeratorID   uint      `gorm:"not null;uniqueIndex:idx_mod_block_triple" json:"moderator_id"`
	BlockedUserID uint      `gorm:"not null;uniqueIndex:idx_mod_block_triple;index" json:"blocked_user_id"`
	SchoolID      uint      `gorm:"not null;uniqueIndex:idx_mod_block_triple;index" json:"school_id"`
	Reason        string    `gorm:"type:text;default:''" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`

	Moderator   *User   `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
	BlockedUser *User   `gorm:"foreignKey:BlockedUserID" json:"blocked_user,omitempty"`
	School      *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// TableName specifies the table name for GORM.
func (ModeratorBlock) TableName() string {
	return "moderator_blocks"
}

// UserBlock is a directional account-to-account block: the blocker no
// longer sees the blocked user's posts and comments. The reverse
// direction is not applied automatically.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`

	Blocker *User `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	Blocked *User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}

// TableName specifies the table name for GORM.
func (UserBlock) TableName() string {
	return "user_blocks"
}
