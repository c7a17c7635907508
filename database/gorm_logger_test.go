package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestExhibitQueryLogger_CountsFailuresOnly(t *testing.T) {
	l := newExhibitQueryLogger(logger.Silent)
	sql := func() (string, int64) { return "SELECT title FROM exhibits WHERE id = 99", 0 }

	before := SQLiteQueryErrorsTotal()
	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), sql, nil)
	if got := SQLiteQueryErrorsTotal(); got != before {
		t.Fatalf("expected query errors to stay at %d, got %d", before, got)
	}

	l.Trace(context.Background(), time.Now(), sql, errors.New("SQLITE_BUSY: database is locked"))
	if got := SQLiteQueryErrorsTotal(); got != before+1 {
		t.Fatalf("expected query errors %d, got %d", before+1, got)
	}
}

func TestExhibitQueryLogger_LogModeKeepsCounting(t *testing.T) {
	l := newExhibitQueryLogger(logger.Silent).LogMode(logger.Silent)
	if _, ok := l.(exhibitQueryLogger); !ok {
		t.Fatalf("expected LogMode to return exhibitQueryLogger, got %T", l)
	}
}
