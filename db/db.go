// ABOUTME: Database connection management and initialization
// ABOUTME: Opens the SQLite operation journal with WAL mode at the XDG path
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the journal location under XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "rankup", "rankup.db")
}

// OpenDatabase opens (creating if needed) the journal at path.
// ":memory:" opens a private in-memory database.
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// One connection avoids "database is locked" and keeps :memory: a single database
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
