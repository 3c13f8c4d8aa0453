package db

import (
	"fmt"

	"infinite-experiment/wayfinder/internal/config"
	"infinite-experiment/wayfinder/internal/logging"
	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
	"infinite-experiment/wayfinder/internal/textsim"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitORM opens the location store with the configured driver
func InitORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logging.Info("Connected to location store via GORM", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the location tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&gormModels.MetroArea{},
		&gormModels.Airport{},
		&gormModels.AirportAlias{},
		&gormModels.LocationLookupCache{},
	); err != nil {
		return fmt.Errorf("failed to migrate location tables: %w", err)
	}
	return backfillSearchKeys(db)
}

// backfillSearchKeys fills search columns on rows written before they existed
func backfillSearchKeys(db *gorm.DB) error {
	var airports []gormModels.Airport
	if err := db.Where("search_name = '' OR search_name IS NULL").Find(&airports).Error; err != nil {
		return fmt.Errorf("failed to scan airports for backfill: %w", err)
	}
	for _, a := range airports {
		err := db.Model(&gormModels.Airport{}).Where("id = ?", a.ID).UpdateColumns(map[string]interface{}{
			"search_name": textsim.Key(a.Name),
			"search_city": textsim.Key(a.City),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to backfill airport %s: %w", a.IATA, err)
		}
	}

	var metros []gormModels.MetroArea
	if err := db.Where("search_name = '' OR search_name IS NULL").Find(&metros).Error; err != nil {
		return fmt.Errorf("failed to scan metro areas for backfill: %w", err)
	}
	for _, m := range metros {
		err := db.Model(&gormModels.MetroArea{}).Where("id = ?", m.ID).
			UpdateColumn("search_name", textsim.Key(m.Name)).Error
		if err != nil {
			return fmt.Errorf("failed to backfill metro %s: %w", m.IATA, err)
		}
	}

	if n := len(airports) + len(metros); n > 0 {
		logging.Info("Backfilled location search keys", "rows", n)
	}
	return nil
}
