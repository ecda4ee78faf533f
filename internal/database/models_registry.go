package database

import "campus/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.School{},
		&models.ModeratorAssignment{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.ModeratorBlock{},
		&models.UserBlock{},
		&models.LoginState{},
	}
}
