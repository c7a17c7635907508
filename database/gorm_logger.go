package database

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// exhibitQueryLogger writes gorm output to the process log and feeds failed
// statements into the SQLite error counters. Lookups of ids that have no row
// are routine for the kiosk, so they are neither counted nor logged.
type exhibitQueryLogger struct {
	inner logger.Interface
}

func newExhibitQueryLogger(level logger.LogLevel) exhibitQueryLogger {
	return exhibitQueryLogger{inner: logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)}
}

func (l exhibitQueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	return exhibitQueryLogger{inner: l.inner.LogMode(level)}
}

func (l exhibitQueryLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l exhibitQueryLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l exhibitQueryLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l exhibitQueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	recordSQLiteError(err)
	l.inner.Trace(ctx, begin, fc, err)
}
