package db

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostel-backend/config"
	"hostel-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(Dialector(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if IsSQLite(cfg.DSN) {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY under load.
		// It is never recycled, so in-memory databases survive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// Dialector picks the gorm driver for a DSN: postgres URLs and key/value
// strings go to postgres, everything else is treated as a SQLite file.
func Dialector(dsn string) gorm.Dialector {
	if IsSQLite(dsn) {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// IsSQLite reports whether dsn addresses a SQLite database.
func IsSQLite(dsn string) bool {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return false
	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		return false
	}
	return true
}

var nonWord = regexp.MustCompile(`\W+`)

// MemoryDSN returns a DSN for a named in-memory SQLite database. Connections
// using the same name share one database until the last one closes.
func MemoryDSN(name string) string {
	return "file:" + nonWord.ReplaceAllString(name, "_") + "?mode=memory&cache=shared"
}
