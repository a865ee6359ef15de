package database

import (
	"fleet-tracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens the locations database and migrates the schema. The
// live loop, the backfill and the HTTP server all share this file; sqlite's
// own per-statement transactions are the only cross-process coordination.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Location{}, // per-device position/status time series
		&models.User{},     // HTTP layer accounts
	); err != nil {
		return nil, err
	}

	return db, nil
}

// NewStatesDB opens the read-only states/districts reference database.
// No migration: the file ships pre-populated.
func NewStatesDB(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
