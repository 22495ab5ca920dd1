package scoring

import (
	"sync"

	"github.com/mauv0809/league-engine/internal/league"
)

// RespondCall records one Respond invocation.
type RespondCall struct {
	MatchID  string
	Decision Decision
	ActorID  string
}

// Mock is a mock implementation of the Coordinator interface for testing.
type Mock struct {
	mu sync.Mutex

	ProposeScoreFunc func(req ProposeRequest) (*league.ScoreProposal, error)
	RespondFunc      func(matchID string, decision Decision, actorID string) error
	ExpireFunc       func(matchID string) error

	ProposeScoreCalls []ProposeRequest
	RespondCalls      []RespondCall
	ExpireCalls       []string
	RearmCalls        []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) ProposeScore(req ProposeRequest) (*league.ScoreProposal, error) {
	m.mu.Lock()
	m.ProposeScoreCalls = append(m.ProposeScoreCalls, req)
	m.mu.Unlock()
	if m.ProposeScoreFunc != nil {
		return m.ProposeScoreFunc(req)
	}
	return &league.ScoreProposal{MatchID: req.MatchID, ProposerID: req.ProposerID, Maps: req.Maps}, nil
}

func (m *Mock) Respond(matchID string, decision Decision, actorID string) error {
	m.mu.Lock()
	m.RespondCalls = append(m.RespondCalls, RespondCall{MatchID: matchID, Decision: decision, ActorID: actorID})
	m.mu.Unlock()
	if m.RespondFunc != nil {
		return m.RespondFunc(matchID, decision, actorID)
	}
	return nil
}

func (m *Mock) Expire(matchID string) error {
	m.mu.Lock()
	m.ExpireCalls = append(m.ExpireCalls, matchID)
	m.mu.Unlock()
	if m.ExpireFunc != nil {
		return m.ExpireFunc(matchID)
	}
	return nil
}

func (m *Mock) Rearm(p *league.ScoreProposal) {
	m.mu.Lock()
	m.RearmCalls = append(m.RearmCalls, p.MatchID)
	m.mu.Unlock()
}

func (m *Mock) LiveHandles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.RearmCalls...)
}
