package database

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// InitDB opens the database and ensures the backing schema for the tabular
// store is in place. For local-only databases dbPath is the filename; when
// primaryUrl is set the remote Turso database is used instead.
func InitDB(dbPath string, primaryUrl string, authToken string) (*sql.DB, func(), error) {
	var dsn string
	if primaryUrl == "" {
		log.Info("Initializing local-only SQLite database", "path", dbPath)
		dsn = "file:" + dbPath
	} else {
		log.Info("Initializing Turso database", "url", primaryUrl)
		dsn = primaryUrl + "?authToken=" + authToken
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = createTables(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create tables: %w", err)
	}
	teardown := func() {
		db.Close()
	}
	return db, teardown, nil
}

func createTables(db *sql.DB) error {
	createTableMeta := `
	CREATE TABLE IF NOT EXISTS table_meta (
		name TEXT PRIMARY KEY,
		header TEXT NOT NULL,
		next_pos INTEGER NOT NULL DEFAULT 0
	);`

	createTableRows := `
	CREATE TABLE IF NOT EXISTS table_rows (
		table_name TEXT NOT NULL,
		pos INTEGER NOT NULL,
		cells TEXT NOT NULL,
		PRIMARY KEY (table_name, pos),
		FOREIGN KEY (table_name) REFERENCES table_meta(name) ON DELETE CASCADE
	);`

	createMetrics := `
	CREATE TABLE IF NOT EXISTS metrics (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Error("Error enabling foreign keys:", "error", err)
		return err
	}
	if _, err := db.Exec(createTableMeta); err != nil {
		return err
	}
	if _, err := db.Exec(createTableRows); err != nil {
		return err
	}
	if _, err := db.Exec(createMetrics); err != nil {
		return err
	}
	log.Info("Database initialized successfully")
	return nil
}
