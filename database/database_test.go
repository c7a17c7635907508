package database

import (
	"context"
	"errors"
	"kiosk/config"
	"kiosk/models"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func writeFixture(t *testing.T, path string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	if err := db.AutoMigrate(&models.Exhibit{}); err != nil {
		t.Fatalf("migrate fixture: %v", err)
	}
	title := "Fossil"
	if err := db.Create(&models.Exhibit{ID: 1, Title: &title}).Error; err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	if err := Close(db); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
}

func TestOpenReadOnly_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenReadOnly(path, &config.Config{SQLiteMaxOpenConns: 1})
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestOpenReadOnly_RejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdc.db")
	writeFixture(t, path)

	db, err := OpenReadOnly(path, &config.Config{SQLiteBusyTimeoutMS: 1000, SQLiteMaxOpenConns: 1, SQLiteMaxIdleConns: 1})
	if err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	defer Close(db)

	var count int64
	if err := db.Model(&models.Exhibit{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	title := "Meteorite"
	if err := db.Create(&models.Exhibit{ID: 2, Title: &title}).Error; err == nil {
		t.Fatalf("expected write to fail on a read-only database")
	}

	if !Up(context.Background(), db) {
		t.Fatalf("expected database to be up")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if Up(context.Background(), nil) {
		t.Fatalf("expected nil db to be down")
	}
}
