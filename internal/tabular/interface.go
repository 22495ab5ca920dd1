package tabular

// Adapter is the row-oriented persistence contract the rest of the
// application is written against. Tables are ordered lists of string cells
// under a named header; every durable league record lives in one of them.
// Implementations must make DeleteRow of an already-absent row a no-op so
// that multi-step cleanups can be retried safely.
type Adapter interface {
	// GetOrCreateTable returns a handle for the named table, creating it
	// with the given header if it does not exist yet.
	GetOrCreateTable(name string, header []string) (*Table, error)
	// ReadAll returns every row of the table in insertion order.
	ReadAll(t *Table) ([]Row, error)
	// AppendRow adds a row at the end of the table and returns its position.
	AppendRow(t *Table, cells []string) (int64, error)
	// UpdateCell overwrites a single cell of the row at pos.
	UpdateCell(t *Table, pos int64, col int, value string) error
	// UpdateRow overwrites the whole row at pos.
	UpdateRow(t *Table, pos int64, cells []string) error
	// DeleteRow removes the row at pos. Deleting an absent row is a no-op.
	DeleteRow(t *Table, pos int64) error
	// Clear removes every row of the table, keeping the header.
	Clear(t *Table) error
}
