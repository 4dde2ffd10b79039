package main

import (
	"github.com/Tathya-Dixit/recipe-share/internal/config" // Configuration
	"github.com/Tathya-Dixit/recipe-share/internal/db"     // Database
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Create or update the recipe schema
}
