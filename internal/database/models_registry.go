package database

import "inkwell/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.ProfileFollower{},
		&models.ProfileFollowing{},
		&models.ResetToken{},
		&models.Post{},
		&models.Comment{},
		&models.Reply{},
		&models.PostLike{},
		&models.CommentLike{},
	}
}
