package database

import (
	"context"
	"errors"
	"fmt"
	"kiosk/config"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMissingFile is returned when the exhibit database file does not exist.
// SQLite would otherwise happily create an empty database in its place.
var ErrMissingFile = errors.New("exhibit database file not found")

// OpenReadOnly opens the exhibit database at path without write access and
// configures the connection pool from settings. The file is never created.
func OpenReadOnly(path string, settings *config.Config) (*gorm.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("exhibit database path is a directory: %s", path)
	}

	// Configure GORM log level
	logLevel := logger.Silent
	if settings.Debug() {
		logLevel = logger.Info
	}

	dsn := buildSQLiteDSN(path, settings)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newExhibitQueryLogger(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	pool := currentSQLitePoolConfig(settings)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Printf("Exhibit database opened read-only: %s", path)
	return db, nil
}

// Close closes the database connection and releases resources. A nil db is a no-op.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	log.Println("Closing exhibit database connection...")
	return sqlDB.Close()
}

// Up reports whether db answers a ping within a short deadline.
func Up(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}
