package main

import (
	"travel_itinerary/internal/config" // Custom import path (Config)
	"travel_itinerary/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("%v", err)
	}
	logrus.WithFields(logrus.Fields{"driver": cfg.DBDriver}).Info("Migration completed.")
}
