package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fastygo/todo/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS todos (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT     NOT NULL,
    description TEXT     NOT NULL DEFAULT '',
    completed   BOOLEAN  NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos (created_at DESC, id DESC)`,
}

// Open opens (creating if needed) the SQLite file at path and ensures the
// todos table exists. AUTOINCREMENT keeps deleted ids from being handed out again.
func Open(path string, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger:  NewGormLogger(logger),
		NowFunc: domain.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("sqlite: create schema: %w", err)
		}
	}

	logger.Info("opened sqlite database", zap.String("path", path))
	return db, nil
}

// Close releases the connection behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}
