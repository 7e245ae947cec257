package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealquest/backend/config"
	"github.com/pageza/mealquest/backend/internal/database"
	"github.com/pageza/mealquest/backend/internal/logging"
)

func main() {
	// Parse command line flags
	reset := flag.Bool("reset", false, "Drop all tables before migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if *reset && config.IsProduction() {
		log.Fatal("refusing to reset a production database")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if *reset {
		if err := database.Reset(db); err != nil {
			log.WithError(err).Fatal("failed to drop tables")
		}
		log.Info("dropped all tables")
	}

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	log.WithField("driver", cfg.DBDriver).Info("migrations applied")
}
