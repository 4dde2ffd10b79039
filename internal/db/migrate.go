package db

import (
	"fmt" // Error wrapping

	"github.com/Tathya-Dixit/recipe-share/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Open connects to MySQL. Duplicate-key errors are translated to gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// AutoMigrate creates tables, foreign keys with cascades, unique indexes and checks
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Recipe{}, &domain.Review{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// Usernames match case-sensitively; MySQL's default collation does not
	if db.Dialector.Name() == "mysql" {
		err := db.Exec("ALTER TABLE users MODIFY username VARCHAR(150) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL").Error
		if err != nil {
			return fmt.Errorf("username collation: %w", err)
		}
	}
	return nil
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
