package main

import (
	"context"
	"os"
	"time"

	"github.com/mkheight/hostel-backend/internal/config"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	logger.WithField("tables", database.HostelTables).Info("Schema is up to date")
}
