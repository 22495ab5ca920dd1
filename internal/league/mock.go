package league

import "sync"

// MockStore is a test double for Store. Each method delegates to its Func
// field when set and records calls that tests commonly assert on.
type MockStore struct {
	mu sync.Mutex

	SignupPlayerFunc   func(p Player) error
	FindPlayerFunc     func(userID string) (*Player, error)
	UnsignupPlayerFunc func(userID string) error
	BanPlayerFunc      func(userID, reason, bannedBy, date string) error
	IsBannedFunc       func(userID string) (bool, error)

	ListTeamsFunc            func() ([]*Team, error)
	FindTeamByNameFunc       func(name string) (*Team, error)
	TeamForPlayerFunc        func(userID string) (*Team, error)
	CreateTeamFunc           func(name string, captain RosterSlot) error
	DisbandTeamFunc          func(name string) error
	AddPlayerToTeamFunc      func(teamName string, slot RosterSlot) error
	RemovePlayerFromTeamFunc func(teamName, userID string) error
	PromotePlayerFunc        func(teamName, userID string) error
	SetTeamStatusFunc        func(teamName string, status TeamStatus) error
	RenameTeamFunc           func(oldName, newName string) error

	CurrentWeekFunc    func() (int, error)
	SetCurrentWeekFunc func(week int) error

	ListMatchesFunc          func() ([]*MatchRecord, error)
	FindMatchFunc            func(matchID string) (*MatchRecord, error)
	AppendMatchFunc          func(m MatchRecord) error
	SetMatchScheduleFunc     func(matchID, proposedDate, scheduledDate string, status MatchStatus) error
	SetMatchOutcomeFunc      func(matchID string, status MatchStatus, winner, loser string) error
	MaxChallengeSequenceFunc func(week int) (int, error)

	LiveProposalsFunc           func() ([]*MatchProposal, error)
	FindProposalFunc            func(matchID string) (*MatchProposal, error)
	FindLiveProposalForPairFunc func(teamA, teamB string) (*MatchProposal, error)
	SaveProposalFunc            func(p MatchProposal) error
	SetProposalPromptFunc       func(matchID string, ref PromptRef) error
	DeleteProposalFunc          func(matchID string) error

	LiveScoreProposalsFunc  func() ([]*ScoreProposal, error)
	FindScoreProposalFunc   func(matchID string) (*ScoreProposal, error)
	SaveScoreProposalFunc   func(p ScoreProposal) error
	DeleteScoreProposalFunc func(matchID string) error

	ListScheduledMatchesFunc func() ([]*ScheduledMatch, error)
	UpsertScheduledMatchFunc func(m ScheduledMatch) error
	DeleteScheduledMatchFunc func(matchID string) error

	ListWeeklyAssignmentsFunc         func() ([]*WeeklyAssignment, error)
	FindWeeklyAssignmentFunc          func(week int, teamA, teamB string) (*WeeklyAssignment, error)
	AppendWeeklyAssignmentFunc        func(a WeeklyAssignment) error
	DeleteWeeklyAssignmentByMatchFunc func(matchID string) error
	ClearWeeklyAssignmentsFunc        func() error

	ListChallengesFunc         func() ([]*ChallengeEntry, error)
	CountChallengesByTeamFunc  func(week int, teamName string) (int, error)
	AppendChallengeFunc        func(c ChallengeEntry) error
	DeleteChallengeByMatchFunc func(matchID string) error
	ArchiveChallengesFunc      func() error

	AppendFinalScoreFunc     func(f FinalScore, proposedDate, scheduledDate string) error
	AppendForfeitHistoryFunc func(week int, matchID, teamA, teamB, winner, reason string) error

	SaveProposalCalls           []MatchProposal
	DeleteProposalCalls         []string
	SaveScoreProposalCalls      []ScoreProposal
	DeleteScoreProposalCalls    []string
	AppendMatchCalls            []MatchRecord
	SetMatchOutcomeCalls        []MatchRecord
	AppendWeeklyAssignmentCalls []WeeklyAssignment
	AppendFinalScoreCalls       []FinalScore
	AppendForfeitHistoryCalls   []string
	UpsertScheduledMatchCalls   []ScheduledMatch
}

// NewMock creates a new mock store.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) SignupPlayer(p Player) error {
	if m.SignupPlayerFunc != nil {
		return m.SignupPlayerFunc(p)
	}
	return nil
}

func (m *MockStore) FindPlayer(userID string) (*Player, error) {
	if m.FindPlayerFunc != nil {
		return m.FindPlayerFunc(userID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) UnsignupPlayer(userID string) error {
	if m.UnsignupPlayerFunc != nil {
		return m.UnsignupPlayerFunc(userID)
	}
	return nil
}

func (m *MockStore) BanPlayer(userID, reason, bannedBy, date string) error {
	if m.BanPlayerFunc != nil {
		return m.BanPlayerFunc(userID, reason, bannedBy, date)
	}
	return nil
}

func (m *MockStore) IsBanned(userID string) (bool, error) {
	if m.IsBannedFunc != nil {
		return m.IsBannedFunc(userID)
	}
	return false, nil
}

func (m *MockStore) ListTeams() ([]*Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc()
	}
	return nil, nil
}

func (m *MockStore) FindTeamByName(name string) (*Team, error) {
	if m.FindTeamByNameFunc != nil {
		return m.FindTeamByNameFunc(name)
	}
	return nil, ErrNotFound
}

func (m *MockStore) TeamForPlayer(userID string) (*Team, error) {
	if m.TeamForPlayerFunc != nil {
		return m.TeamForPlayerFunc(userID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) CreateTeam(name string, captain RosterSlot) error {
	if m.CreateTeamFunc != nil {
		return m.CreateTeamFunc(name, captain)
	}
	return nil
}

func (m *MockStore) DisbandTeam(name string) error {
	if m.DisbandTeamFunc != nil {
		return m.DisbandTeamFunc(name)
	}
	return nil
}

func (m *MockStore) AddPlayerToTeam(teamName string, slot RosterSlot) error {
	if m.AddPlayerToTeamFunc != nil {
		return m.AddPlayerToTeamFunc(teamName, slot)
	}
	return nil
}

func (m *MockStore) RemovePlayerFromTeam(teamName, userID string) error {
	if m.RemovePlayerFromTeamFunc != nil {
		return m.RemovePlayerFromTeamFunc(teamName, userID)
	}
	return nil
}

func (m *MockStore) PromotePlayer(teamName, userID string) error {
	if m.PromotePlayerFunc != nil {
		return m.PromotePlayerFunc(teamName, userID)
	}
	return nil
}

func (m *MockStore) SetTeamStatus(teamName string, status TeamStatus) error {
	if m.SetTeamStatusFunc != nil {
		return m.SetTeamStatusFunc(teamName, status)
	}
	return nil
}

func (m *MockStore) RenameTeam(oldName, newName string) error {
	if m.RenameTeamFunc != nil {
		return m.RenameTeamFunc(oldName, newName)
	}
	return nil
}

func (m *MockStore) CurrentWeek() (int, error) {
	if m.CurrentWeekFunc != nil {
		return m.CurrentWeekFunc()
	}
	return 0, nil
}

func (m *MockStore) SetCurrentWeek(week int) error {
	if m.SetCurrentWeekFunc != nil {
		return m.SetCurrentWeekFunc(week)
	}
	return nil
}

func (m *MockStore) ListMatches() ([]*MatchRecord, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) FindMatch(matchID string) (*MatchRecord, error) {
	if m.FindMatchFunc != nil {
		return m.FindMatchFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) AppendMatch(rec MatchRecord) error {
	m.mu.Lock()
	m.AppendMatchCalls = append(m.AppendMatchCalls, rec)
	m.mu.Unlock()
	if m.AppendMatchFunc != nil {
		return m.AppendMatchFunc(rec)
	}
	return nil
}

func (m *MockStore) SetMatchSchedule(matchID, proposedDate, scheduledDate string, status MatchStatus) error {
	if m.SetMatchScheduleFunc != nil {
		return m.SetMatchScheduleFunc(matchID, proposedDate, scheduledDate, status)
	}
	return nil
}

func (m *MockStore) SetMatchOutcome(matchID string, status MatchStatus, winner, loser string) error {
	m.mu.Lock()
	m.SetMatchOutcomeCalls = append(m.SetMatchOutcomeCalls, MatchRecord{MatchID: matchID, Status: status, Winner: winner, Loser: loser})
	m.mu.Unlock()
	if m.SetMatchOutcomeFunc != nil {
		return m.SetMatchOutcomeFunc(matchID, status, winner, loser)
	}
	return nil
}

func (m *MockStore) MaxChallengeSequence(week int) (int, error) {
	if m.MaxChallengeSequenceFunc != nil {
		return m.MaxChallengeSequenceFunc(week)
	}
	return 0, nil
}

func (m *MockStore) LiveProposals() ([]*MatchProposal, error) {
	if m.LiveProposalsFunc != nil {
		return m.LiveProposalsFunc()
	}
	return nil, nil
}

func (m *MockStore) FindProposal(matchID string) (*MatchProposal, error) {
	if m.FindProposalFunc != nil {
		return m.FindProposalFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) FindLiveProposalForPair(teamA, teamB string) (*MatchProposal, error) {
	if m.FindLiveProposalForPairFunc != nil {
		return m.FindLiveProposalForPairFunc(teamA, teamB)
	}
	return nil, ErrNotFound
}

func (m *MockStore) SaveProposal(p MatchProposal) error {
	m.mu.Lock()
	m.SaveProposalCalls = append(m.SaveProposalCalls, p)
	m.mu.Unlock()
	if m.SaveProposalFunc != nil {
		return m.SaveProposalFunc(p)
	}
	return nil
}

func (m *MockStore) SetProposalPrompt(matchID string, ref PromptRef) error {
	if m.SetProposalPromptFunc != nil {
		return m.SetProposalPromptFunc(matchID, ref)
	}
	return nil
}

func (m *MockStore) DeleteProposal(matchID string) error {
	m.mu.Lock()
	m.DeleteProposalCalls = append(m.DeleteProposalCalls, matchID)
	m.mu.Unlock()
	if m.DeleteProposalFunc != nil {
		return m.DeleteProposalFunc(matchID)
	}
	return nil
}

func (m *MockStore) LiveScoreProposals() ([]*ScoreProposal, error) {
	if m.LiveScoreProposalsFunc != nil {
		return m.LiveScoreProposalsFunc()
	}
	return nil, nil
}

func (m *MockStore) FindScoreProposal(matchID string) (*ScoreProposal, error) {
	if m.FindScoreProposalFunc != nil {
		return m.FindScoreProposalFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) SaveScoreProposal(p ScoreProposal) error {
	m.mu.Lock()
	m.SaveScoreProposalCalls = append(m.SaveScoreProposalCalls, p)
	m.mu.Unlock()
	if m.SaveScoreProposalFunc != nil {
		return m.SaveScoreProposalFunc(p)
	}
	return nil
}

func (m *MockStore) DeleteScoreProposal(matchID string) error {
	m.mu.Lock()
	m.DeleteScoreProposalCalls = append(m.DeleteScoreProposalCalls, matchID)
	m.mu.Unlock()
	if m.DeleteScoreProposalFunc != nil {
		return m.DeleteScoreProposalFunc(matchID)
	}
	return nil
}

func (m *MockStore) ListScheduledMatches() ([]*ScheduledMatch, error) {
	if m.ListScheduledMatchesFunc != nil {
		return m.ListScheduledMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertScheduledMatch(sm ScheduledMatch) error {
	m.mu.Lock()
	m.UpsertScheduledMatchCalls = append(m.UpsertScheduledMatchCalls, sm)
	m.mu.Unlock()
	if m.UpsertScheduledMatchFunc != nil {
		return m.UpsertScheduledMatchFunc(sm)
	}
	return nil
}

func (m *MockStore) DeleteScheduledMatch(matchID string) error {
	if m.DeleteScheduledMatchFunc != nil {
		return m.DeleteScheduledMatchFunc(matchID)
	}
	return nil
}

func (m *MockStore) ListWeeklyAssignments() ([]*WeeklyAssignment, error) {
	if m.ListWeeklyAssignmentsFunc != nil {
		return m.ListWeeklyAssignmentsFunc()
	}
	return nil, nil
}

func (m *MockStore) FindWeeklyAssignment(week int, teamA, teamB string) (*WeeklyAssignment, error) {
	if m.FindWeeklyAssignmentFunc != nil {
		return m.FindWeeklyAssignmentFunc(week, teamA, teamB)
	}
	return nil, ErrNotFound
}

func (m *MockStore) AppendWeeklyAssignment(a WeeklyAssignment) error {
	m.mu.Lock()
	m.AppendWeeklyAssignmentCalls = append(m.AppendWeeklyAssignmentCalls, a)
	m.mu.Unlock()
	if m.AppendWeeklyAssignmentFunc != nil {
		return m.AppendWeeklyAssignmentFunc(a)
	}
	return nil
}

func (m *MockStore) DeleteWeeklyAssignmentByMatch(matchID string) error {
	if m.DeleteWeeklyAssignmentByMatchFunc != nil {
		return m.DeleteWeeklyAssignmentByMatchFunc(matchID)
	}
	return nil
}

func (m *MockStore) ClearWeeklyAssignments() error {
	if m.ClearWeeklyAssignmentsFunc != nil {
		return m.ClearWeeklyAssignmentsFunc()
	}
	return nil
}

func (m *MockStore) ListChallenges() ([]*ChallengeEntry, error) {
	if m.ListChallengesFunc != nil {
		return m.ListChallengesFunc()
	}
	return nil, nil
}

func (m *MockStore) CountChallengesByTeam(week int, teamName string) (int, error) {
	if m.CountChallengesByTeamFunc != nil {
		return m.CountChallengesByTeamFunc(week, teamName)
	}
	return 0, nil
}

func (m *MockStore) AppendChallenge(c ChallengeEntry) error {
	if m.AppendChallengeFunc != nil {
		return m.AppendChallengeFunc(c)
	}
	return nil
}

func (m *MockStore) DeleteChallengeByMatch(matchID string) error {
	if m.DeleteChallengeByMatchFunc != nil {
		return m.DeleteChallengeByMatchFunc(matchID)
	}
	return nil
}

func (m *MockStore) ArchiveChallenges() error {
	if m.ArchiveChallengesFunc != nil {
		return m.ArchiveChallengesFunc()
	}
	return nil
}

func (m *MockStore) AppendFinalScore(f FinalScore, proposedDate, scheduledDate string) error {
	m.mu.Lock()
	m.AppendFinalScoreCalls = append(m.AppendFinalScoreCalls, f)
	m.mu.Unlock()
	if m.AppendFinalScoreFunc != nil {
		return m.AppendFinalScoreFunc(f, proposedDate, scheduledDate)
	}
	return nil
}

func (m *MockStore) AppendForfeitHistory(week int, matchID, teamA, teamB, winner, reason string) error {
	m.mu.Lock()
	m.AppendForfeitHistoryCalls = append(m.AppendForfeitHistoryCalls, matchID)
	m.mu.Unlock()
	if m.AppendForfeitHistoryFunc != nil {
		return m.AppendForfeitHistoryFunc(week, matchID, teamA, teamB, winner, reason)
	}
	return nil
}
