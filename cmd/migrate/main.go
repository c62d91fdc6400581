package main

import (
	"loyalty_system/internal/config" // Custom import path (Config)
	"loyalty_system/internal/db"     // Custom import path (Database)
)

// Main entry point for migration of the DB-backed ledger schema
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Create card and movement tables
}
