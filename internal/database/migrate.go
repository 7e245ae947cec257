package database

import (
	"gorm.io/gorm"

	"github.com/pageza/mealquest/backend/internal/models"
)

func tables() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FavoriteSet{},
	}
}

// Migrate creates or updates the tables this service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(tables()...)
}

// Reset drops every table this service owns. Data is lost.
func Reset(db *gorm.DB) error {
	return db.Migrator().DropTable(tables()...)
}
