package matchmaking

import "sync"

// MockEngine is a mock implementation of the Engine interface for testing.
type MockEngine struct {
	mu sync.Mutex

	RunWeeklyFunc func(dryRun bool) (*CycleResult, error)

	RunWeeklyCalls []bool
}

// NewMock creates a new mock instance.
func NewMock() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) RunWeekly(dryRun bool) (*CycleResult, error) {
	m.mu.Lock()
	m.RunWeeklyCalls = append(m.RunWeeklyCalls, dryRun)
	m.mu.Unlock()
	if m.RunWeeklyFunc != nil {
		return m.RunWeeklyFunc(dryRun)
	}
	return &CycleResult{Week: 1}, nil
}
