package ratings

import (
	"sync"

	"github.com/mauv0809/league-engine/internal/league"
)

// ResultCall records one ApplyTeamResult or ApplyPlayerResult invocation.
type ResultCall struct {
	Key string // team name or user ID
	Won bool
}

// MockLedger is a test double for Ledger.
type MockLedger struct {
	mu sync.Mutex

	TeamEntriesFunc       func() ([]TeamEntry, error)
	PlayerEntriesFunc     func() ([]PlayerEntry, error)
	TeamRatingFunc        func(teamName string) (int, error)
	ApplyTeamResultFunc   func(teamName string, won bool) error
	ApplyPlayerResultFunc func(userID, name string, won bool) error
	SyncTeamsFunc         func(teams []*league.Team) error

	ApplyTeamResultCalls   []ResultCall
	ApplyPlayerResultCalls []ResultCall
	SyncTeamsCalls         int
}

// NewMock creates a new mock ledger.
func NewMock() *MockLedger {
	return &MockLedger{}
}

func (m *MockLedger) TeamEntries() ([]TeamEntry, error) {
	if m.TeamEntriesFunc != nil {
		return m.TeamEntriesFunc()
	}
	return nil, nil
}

func (m *MockLedger) PlayerEntries() ([]PlayerEntry, error) {
	if m.PlayerEntriesFunc != nil {
		return m.PlayerEntriesFunc()
	}
	return nil, nil
}

func (m *MockLedger) TeamRating(teamName string) (int, error) {
	if m.TeamRatingFunc != nil {
		return m.TeamRatingFunc(teamName)
	}
	return 800, nil
}

func (m *MockLedger) ApplyTeamResult(teamName string, won bool) error {
	m.mu.Lock()
	m.ApplyTeamResultCalls = append(m.ApplyTeamResultCalls, ResultCall{Key: teamName, Won: won})
	m.mu.Unlock()
	if m.ApplyTeamResultFunc != nil {
		return m.ApplyTeamResultFunc(teamName, won)
	}
	return nil
}

func (m *MockLedger) ApplyPlayerResult(userID, name string, won bool) error {
	m.mu.Lock()
	m.ApplyPlayerResultCalls = append(m.ApplyPlayerResultCalls, ResultCall{Key: userID, Won: won})
	m.mu.Unlock()
	if m.ApplyPlayerResultFunc != nil {
		return m.ApplyPlayerResultFunc(userID, name, won)
	}
	return nil
}

func (m *MockLedger) SyncTeams(teams []*league.Team) error {
	m.mu.Lock()
	m.SyncTeamsCalls++
	m.mu.Unlock()
	if m.SyncTeamsFunc != nil {
		return m.SyncTeamsFunc(teams)
	}
	return nil
}
