package rehydrate

import "sync"

// Mock is a mock implementation of the Service interface for testing.
type Mock struct {
	mu sync.Mutex

	RunFunc func() (*Report, error)

	RunCalls int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Run() (*Report, error) {
	m.mu.Lock()
	m.RunCalls++
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc()
	}
	return &Report{}, nil
}
