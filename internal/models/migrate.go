package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates/updates all tables
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&User{},
		&File{},
		&Bundle{},
		&BundleFile{},
		&ChatRoom{},
		&Message{},
		&Payment{},
		&ContactMessage{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}
