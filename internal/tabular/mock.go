package tabular

import "sync"

// MockAdapter is a mock implementation of the Adapter interface for testing.
// It is safe for concurrent use.
type MockAdapter struct {
	mu sync.Mutex

	GetOrCreateTableFunc func(name string, header []string) (*Table, error)
	ReadAllFunc          func(t *Table) ([]Row, error)
	AppendRowFunc        func(t *Table, cells []string) (int64, error)
	UpdateCellFunc       func(t *Table, pos int64, col int, value string) error
	UpdateRowFunc        func(t *Table, pos int64, cells []string) error
	DeleteRowFunc        func(t *Table, pos int64) error
	ClearFunc            func(t *Table) error

	AppendRowCalls []struct {
		Table string
		Cells []string
	}
	DeleteRowCalls []struct {
		Table string
		Pos   int64
	}
	ClearCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockAdapter {
	return &MockAdapter{}
}

func (m *MockAdapter) GetOrCreateTable(name string, header []string) (*Table, error) {
	if m.GetOrCreateTableFunc != nil {
		return m.GetOrCreateTableFunc(name, header)
	}
	return &Table{Name: name, Header: header}, nil
}

func (m *MockAdapter) ReadAll(t *Table) ([]Row, error) {
	if m.ReadAllFunc != nil {
		return m.ReadAllFunc(t)
	}
	return nil, nil
}

func (m *MockAdapter) AppendRow(t *Table, cells []string) (int64, error) {
	m.mu.Lock()
	m.AppendRowCalls = append(m.AppendRowCalls, struct {
		Table string
		Cells []string
	}{t.Name, cells})
	m.mu.Unlock()
	if m.AppendRowFunc != nil {
		return m.AppendRowFunc(t, cells)
	}
	return 0, nil
}

func (m *MockAdapter) UpdateCell(t *Table, pos int64, col int, value string) error {
	if m.UpdateCellFunc != nil {
		return m.UpdateCellFunc(t, pos, col, value)
	}
	return nil
}

func (m *MockAdapter) UpdateRow(t *Table, pos int64, cells []string) error {
	if m.UpdateRowFunc != nil {
		return m.UpdateRowFunc(t, pos, cells)
	}
	return nil
}

func (m *MockAdapter) DeleteRow(t *Table, pos int64) error {
	m.mu.Lock()
	m.DeleteRowCalls = append(m.DeleteRowCalls, struct {
		Table string
		Pos   int64
	}{t.Name, pos})
	m.mu.Unlock()
	if m.DeleteRowFunc != nil {
		return m.DeleteRowFunc(t, pos)
	}
	return nil
}

func (m *MockAdapter) Clear(t *Table) error {
	m.mu.Lock()
	m.ClearCalls = append(m.ClearCalls, t.Name)
	m.mu.Unlock()
	if m.ClearFunc != nil {
		return m.ClearFunc(t)
	}
	return nil
}
