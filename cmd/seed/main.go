// Command seed loads the starter catalog into the configured database.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/junaidrashid-git/restaurant-pos-api/config"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/seed"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "catalog YAML (defaults to the built-in catalog)")
	flag.Parse()

	cfg := config.Load()

	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	logger := l.Sugar()
	defer logger.Sync()

	catalog, err := seed.Load(*file)
	if err != nil {
		logger.Fatalw("load catalog", "file", *file, "error", err)
	}

	db, err := models.Open(cfg.Database, false)
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalw("auto-migrate failed", "error", err)
	}

	if _, err := seed.Apply(context.Background(), db, catalog, logger); err != nil {
		logger.Fatalw("seeding failed", "error", err)
	}
}
