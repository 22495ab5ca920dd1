package tabular

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new Adapter backed by the given database.
func New(db *sql.DB) Adapter {
	return &store{
		db: db,
	}
}

func (s *store) GetOrCreateTable(name string, header []string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var headerJSON string
	err := s.db.QueryRow("SELECT header FROM table_meta WHERE name = ?", name).Scan(&headerJSON)
	if err == nil {
		var existing []string
		if err := json.Unmarshal([]byte(headerJSON), &existing); err != nil {
			return nil, fmt.Errorf("failed to decode header for table %s: %w", name, err)
		}
		return &Table{Name: name, Header: existing}, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up table %s: %w", name, err)
	}

	encoded, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header for table %s: %w", name, err)
	}
	_, err = s.db.Exec("INSERT INTO table_meta (name, header, next_pos) VALUES (?, ?, 0)", name, string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}
	log.Info("Created table", "table", name, "columns", len(header))
	return &Table{Name: name, Header: header}, nil
}

func (s *store) ReadAll(t *Table) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT pos, cells FROM table_rows WHERE table_name = ? ORDER BY pos", t.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var cellsJSON string
		if err := rows.Scan(&r.Pos, &cellsJSON); err != nil {
			log.Error("Failed to scan row", "table", t.Name, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(cellsJSON), &r.Cells); err != nil {
			log.Error("Failed to unmarshal row cells, skipping", "table", t.Name, "pos", r.Pos, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *store) AppendRow(t *Table, cells []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	var pos int64
	if err := tx.QueryRow("SELECT next_pos FROM table_meta WHERE name = ?", t.Name).Scan(&pos); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to allocate position in table %s: %w", t.Name, err)
	}

	encoded, err := json.Marshal(cells)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to encode row for table %s: %w", t.Name, err)
	}

	if _, err := tx.Exec("INSERT INTO table_rows (table_name, pos, cells) VALUES (?, ?, ?)", t.Name, pos, string(encoded)); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to append to table %s: %w", t.Name, err)
	}
	if _, err := tx.Exec("UPDATE table_meta SET next_pos = ? WHERE name = ?", pos+1, t.Name); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to advance position for table %s: %w", t.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return pos, nil
}

func (s *store) UpdateCell(t *Table, pos int64, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells, err := s.readRowLocked(t, pos)
	if err != nil {
		return err
	}
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	return s.writeRowLocked(t, pos, cells)
}

func (s *store) UpdateRow(t *Table, pos int64, cells []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readRowLocked(t, pos); err != nil {
		return err
	}
	return s.writeRowLocked(t, pos, cells)
}

func (s *store) DeleteRow(t *Table, pos int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM table_rows WHERE table_name = ? AND pos = ?", t.Name, pos)
	if err != nil {
		return fmt.Errorf("failed to delete row %d from table %s: %w", pos, t.Name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already gone. Retried cleanups land here, which is fine.
		log.Debug("Delete of absent row ignored", "table", t.Name, "pos", pos)
	}
	return nil
}

func (s *store) Clear(t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM table_rows WHERE table_name = ?", t.Name); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", t.Name, err)
	}
	return nil
}

func (s *store) readRowLocked(t *Table, pos int64) ([]string, error) {
	var cellsJSON string
	err := s.db.QueryRow("SELECT cells FROM table_rows WHERE table_name = ? AND pos = ?", t.Name, pos).Scan(&cellsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrRowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d from table %s: %w", pos, t.Name, err)
	}
	var cells []string
	if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
		return nil, fmt.Errorf("failed to decode row %d from table %s: %w", pos, t.Name, err)
	}
	return cells, nil
}

func (s *store) writeRowLocked(t *Table, pos int64, cells []string) error {
	encoded, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("failed to encode row for table %s: %w", t.Name, err)
	}
	_, err = s.db.Exec("UPDATE table_rows SET cells = ? WHERE table_name = ? AND pos = ?", string(encoded), t.Name, pos)
	if err != nil {
		return fmt.Errorf("failed to update row %d in table %s: %w", pos, t.Name, err)
	}
	return nil
}
