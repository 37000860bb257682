package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pixelcutlabs/propellic-pulse/internal/api"
	dbstore "github.com/pixelcutlabs/propellic-pulse/internal/db"
)

// openStore returns the SQLite-backed store when PULSE_SQLITE_PATH is set,
// running pending migrations first, and an in-memory store otherwise.
func openStore() (api.Store, error) {
	sqlitePath := os.Getenv("PULSE_SQLITE_PATH")
	if sqlitePath == "" {
		log.Printf("PULSE_SQLITE_PATH not set, using in-memory store (data will not survive restarts)")
		return api.NewMemoryStore(), nil
	}

	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := dbstore.RunMigrations(sqliteDB, os.Getenv("PULSE_MIGRATIONS_DIR")); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return dbstore.NewStore(sqliteDB)
}
