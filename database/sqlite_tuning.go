package database

import (
	"fmt"
	"kiosk/config"
	"net/url"
	"strings"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// sanitizeSQLitePoolConfig ensures maxOpenConns is at least 1, clamps
// maxIdleConns to [0, maxOpenConns] and forces both durations to be non-negative.
func sanitizeSQLitePoolConfig(cfg sqlitePoolConfig) sqlitePoolConfig {
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	if cfg.maxIdleConns < 0 {
		cfg.maxIdleConns = 0
	}
	if cfg.maxIdleConns > cfg.maxOpenConns {
		cfg.maxIdleConns = cfg.maxOpenConns
	}
	if cfg.maxIdleSec < 0 {
		cfg.maxIdleSec = 0
	}
	if cfg.maxLifeSec < 0 {
		cfg.maxLifeSec = 0
	}
	return cfg
}

// buildSQLiteDSN turns a filesystem path into a read-only SQLite URI.
//
// The "file:" prefix makes the driver hand the whole URI to SQLite, so mode=ro
// is honoured and a missing file is never created. busy_timeout and query_only
// are applied to every new connection through _pragma parameters. Query
// parameters already present on dbPath are kept.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")
	base = strings.TrimPrefix(base, "file:")

	query, _ := url.ParseQuery(rawQuery)
	query.Set("mode", "ro")
	if settings.SQLiteBusyTimeoutMS > 0 {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
	}
	query.Add("_pragma", "query_only(1)")

	return "file:" + escapeURIPath(base) + "?" + query.Encode()
}

// escapeURIPath escapes the characters SQLite treats specially in a URI path.
func escapeURIPath(p string) string {
	r := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
	return r.Replace(p)
}

// currentSQLitePoolConfig reads the pool settings from settings and enforces sane bounds.
func currentSQLitePoolConfig(settings *config.Config) sqlitePoolConfig {
	return sanitizeSQLitePoolConfig(sqlitePoolConfig{
		maxOpenConns: settings.SQLiteMaxOpenConns,
		maxIdleConns: settings.SQLiteMaxIdleConns,
		maxIdleSec:   settings.SQLiteConnMaxIdleSec,
		maxLifeSec:   settings.SQLiteConnMaxLifeSec,
	})
}
