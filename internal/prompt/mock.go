package prompt

import (
	"fmt"
	"sync"

	"github.com/mauv0809/league-engine/internal/league"
)

// PresentCall records one Present invocation.
type PresentCall struct {
	Kind    Kind
	MatchID string
	Text    string
}

// Mock is a mock implementation of the Prompter interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	PresentFunc func(kind Kind, matchID, text string) (league.PromptRef, error)
	SettleFunc  func(ref league.PromptRef, text string) error
	RemoveFunc  func(ref league.PromptRef) error
	ExistsFunc  func(ref league.PromptRef) (bool, error)

	PresentCalls []PresentCall
	SettleCalls  []league.PromptRef
	RemoveCalls  []league.PromptRef
	ExistsCalls  []league.PromptRef
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Present(kind Kind, matchID, text string) (league.PromptRef, error) {
	m.mu.Lock()
	m.PresentCalls = append(m.PresentCalls, PresentCall{Kind: kind, MatchID: matchID, Text: text})
	n := len(m.PresentCalls)
	m.mu.Unlock()
	if m.PresentFunc != nil {
		return m.PresentFunc(kind, matchID, text)
	}
	return league.PromptRef{ChannelID: "C-mock", MessageID: fmt.Sprintf("ts-%d", n)}, nil
}

func (m *Mock) Settle(ref league.PromptRef, text string) error {
	m.mu.Lock()
	m.SettleCalls = append(m.SettleCalls, ref)
	m.mu.Unlock()
	if m.SettleFunc != nil {
		return m.SettleFunc(ref, text)
	}
	return nil
}

func (m *Mock) Remove(ref league.PromptRef) error {
	m.mu.Lock()
	m.RemoveCalls = append(m.RemoveCalls, ref)
	m.mu.Unlock()
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ref)
	}
	return nil
}

func (m *Mock) Exists(ref league.PromptRef) (bool, error) {
	m.mu.Lock()
	m.ExistsCalls = append(m.ExistsCalls, ref)
	m.mu.Unlock()
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ref)
	}
	return !ref.IsZero(), nil
}
