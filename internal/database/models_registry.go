package database

import "polyglot/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models, in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Language{},
		&models.UserLanguage{},
		&models.Post{},
		&models.Reply{},
		&models.Reaction{},
	}
}
