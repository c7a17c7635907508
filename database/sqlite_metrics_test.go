package database

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestClassifySQLiteError_Busy(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_BUSY: database is locked"))
	if !busy || locked {
		t.Fatalf("expected busy=true locked=false, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_Locked(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_LOCKED: database table is locked"))
	if busy || !locked {
		t.Fatalf("expected busy=false locked=true, got busy=%v locked=%v", busy, locked)
	}
}

func TestRecordSQLiteError_IgnoresRecordNotFound(t *testing.T) {
	before := SQLiteQueryErrorsTotal()
	recordSQLiteError(gorm.ErrRecordNotFound)
	if got := SQLiteQueryErrorsTotal(); got != before {
		t.Fatalf("expected query errors to stay at %d, got %d", before, got)
	}

	recordSQLiteError(errors.New("no such table: exhibits"))
	if got := SQLiteQueryErrorsTotal(); got != before+1 {
		t.Fatalf("expected query errors %d, got %d", before+1, got)
	}
}
