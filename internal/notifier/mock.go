package notifier

import (
	"sync"

	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/ratings"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	AnnounceWeeklyMatchupsCalls []int
	SendForfeitNoticeCalls      []string
	SendMatchScheduledCalls     []*league.MatchRecord
	SendFinalResultCalls        []*league.FinalScore
	SendLeaderboardCalls        [][]ratings.TeamEntry
	SendPlayerLeaderboardCalls  [][]ratings.PlayerEntry
	SendDirectMessageCalls      []struct{ UserID, Text string }

	// Spies
	AnnounceWeeklyMatchupsFunc          func(week int, assignments []*league.WeeklyAssignment, dryRun bool) error
	SendForfeitNoticeFunc               func(matchID, teamA, teamB, reason, winner string, dryRun bool) error
	SendMatchScheduledFunc              func(m *league.MatchRecord, dryRun bool) error
	SendFinalResultFunc                 func(f *league.FinalScore, dryRun bool) error
	SendLeaderboardFunc                 func(entries []ratings.TeamEntry, dryRun bool) error
	SendPlayerLeaderboardFunc           func(entries []ratings.PlayerEntry, dryRun bool) error
	SendDirectMessageFunc               func(userID, text string, dryRun bool) error
	FormatLeaderboardResponseFunc       func(entries []ratings.TeamEntry) (any, error)
	FormatPlayerLeaderboardResponseFunc func(entries []ratings.PlayerEntry) (any, error)
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) AnnounceWeeklyMatchups(week int, assignments []*league.WeeklyAssignment, dryRun bool) error {
	m.mu.Lock()
	m.AnnounceWeeklyMatchupsCalls = append(m.AnnounceWeeklyMatchupsCalls, week)
	m.mu.Unlock()
	if m.AnnounceWeeklyMatchupsFunc != nil {
		return m.AnnounceWeeklyMatchupsFunc(week, assignments, dryRun)
	}
	return nil
}

func (m *Mock) SendForfeitNotice(matchID, teamA, teamB, reason, winner string, dryRun bool) error {
	m.mu.Lock()
	m.SendForfeitNoticeCalls = append(m.SendForfeitNoticeCalls, matchID)
	m.mu.Unlock()
	if m.SendForfeitNoticeFunc != nil {
		return m.SendForfeitNoticeFunc(matchID, teamA, teamB, reason, winner, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchScheduled(rec *league.MatchRecord, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchScheduledCalls = append(m.SendMatchScheduledCalls, rec)
	m.mu.Unlock()
	if m.SendMatchScheduledFunc != nil {
		return m.SendMatchScheduledFunc(rec, dryRun)
	}
	return nil
}

func (m *Mock) SendFinalResult(f *league.FinalScore, dryRun bool) error {
	m.mu.Lock()
	m.SendFinalResultCalls = append(m.SendFinalResultCalls, f)
	m.mu.Unlock()
	if m.SendFinalResultFunc != nil {
		return m.SendFinalResultFunc(f, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(entries []ratings.TeamEntry, dryRun bool) error {
	m.mu.Lock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, entries)
	m.mu.Unlock()
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(entries, dryRun)
	}
	return nil
}

func (m *Mock) SendPlayerLeaderboard(entries []ratings.PlayerEntry, dryRun bool) error {
	m.mu.Lock()
	m.SendPlayerLeaderboardCalls = append(m.SendPlayerLeaderboardCalls, entries)
	m.mu.Unlock()
	if m.SendPlayerLeaderboardFunc != nil {
		return m.SendPlayerLeaderboardFunc(entries, dryRun)
	}
	return nil
}

func (m *Mock) SendDirectMessage(userID, text string, dryRun bool) error {
	m.mu.Lock()
	m.SendDirectMessageCalls = append(m.SendDirectMessageCalls, struct{ UserID, Text string }{userID, text})
	m.mu.Unlock()
	if m.SendDirectMessageFunc != nil {
		return m.SendDirectMessageFunc(userID, text, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(entries []ratings.TeamEntry) (any, error) {
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(entries)
	}
	return nil, nil
}

func (m *Mock) FormatPlayerLeaderboardResponse(entries []ratings.PlayerEntry) (any, error) {
	if m.FormatPlayerLeaderboardResponseFunc != nil {
		return m.FormatPlayerLeaderboardResponseFunc(entries)
	}
	return nil, nil
}
