package main

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
)

const usage = "Usage: migrate <up|down [steps]|version> [database-path]"

func main() {
	log := logrus.New()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	args := os.Args[2:]
	steps := 0
	if command == "down" && len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			steps = n
			args = args[1:]
		}
	}
	if len(args) > 0 {
		cfg.Database.Path = args[0]
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("An error occurred while migrating up: %v", err)
		}
		log.Info("Migrations applied successfully.")
	case "down":
		if err := database.MigrateDown(db, steps); err != nil {
			log.Fatalf("An error occurred while migrating down: %v", err)
		}
		log.Info("Migrations rolled back successfully.")
	case "version":
		version, dirty, err := database.MigrationVersion(db)
		if err != nil {
			log.Fatalf("Failed to read schema version: %v", err)
		}
		log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema version")
	default:
		log.Fatalf("Unknown command: %s. %s", command, usage)
	}
}
