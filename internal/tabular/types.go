package tabular

import (
	"database/sql"
	"errors"
	"sync"
)

// ErrRowNotFound is returned by cell/row updates targeting a position that
// does not exist. Deletes never return it.
var ErrRowNotFound = errors.New("tabular: row not found")

// Table is a handle to a named table. The header is fixed at creation time.
type Table struct {
	Name   string
	Header []string
}

// Row is a single stored row. Pos is the durable position used for updates
// and deletes; it is stable for the lifetime of the row.
type Row struct {
	Pos   int64
	Cells []string
}

// Get returns the cell at col, or "" when the row is shorter than col+1.
// Rows written by older code may be narrower than the current header.
func (r Row) Get(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

// store handles all database operations for the tabular adapter.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
