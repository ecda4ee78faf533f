package models

import "time"

// School represents a node in the topical category hierarchy. Schools
// form a forest: a nil ParentID marks a root.
type School struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:120;not null" json:"name"`
	Slug            string    `gorm:"size:24;not null;uniqueIndex" json:"slug"`
	Description     string    `gorm:"type:text" json:"description"`
	ParentID        *uint     `gorm:"index" json:"parent_id"`
	CreatedByUserID *uint     `json:"created_by_user_id"`
	CreatedByUser   *User     `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	CreatedByRole   UserRole  `gorm:"type:varchar(20);not null;default:'admin'" json:"created_by_role"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (School) TableName() string {
	return "schools"
}

// SchoolNode is a school with its resolved children, used for tree responses.
type SchoolNode struct {
	School   School        `json:"school"`
	Children []*SchoolNode `json:"children"`
}

// ModeratorAssignment maps a moderator to the root school of their
// authority. A nil SchoolID means the moderator is currently unassigned.
type ModeratorAssignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModeratorID uint      `gorm:"not null;uniqueIndex" json:"moderator_id"`
	Moderator   *User     `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
	SchoolID    *uint     `gorm:"index" json:"school_id"`
	School      *School   `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ModeratorAssignment) TableName() string {
	return "moderator_assignments"
}
