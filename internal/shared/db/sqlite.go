package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens the embedded store at path, ":memory:" or an empty path gives a private
// in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	var dsn string
	switch {
	case path == "", strings.EqualFold(path, ":memory:"):
		dsn = "file::memory:?_foreign_keys=1"
	case strings.HasPrefix(path, "file:"):
		dsn = path
	default:
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", filepath.ToSlash(path))
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer, serialising here avoids SQLITE_BUSY under load
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}
