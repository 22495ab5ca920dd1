package league

// Store is the repository for all durable league records. It is backed by
// linear scans over the tabular adapter; callers never see row positions.
type Store interface {
	// Players
	SignupPlayer(p Player) error
	FindPlayer(userID string) (*Player, error)
	UnsignupPlayer(userID string) error
	BanPlayer(userID, reason, bannedBy, date string) error
	IsBanned(userID string) (bool, error)

	// Teams
	ListTeams() ([]*Team, error)
	FindTeamByName(name string) (*Team, error)
	TeamForPlayer(userID string) (*Team, error)
	CreateTeam(name string, captain RosterSlot) error
	DisbandTeam(name string) error
	AddPlayerToTeam(teamName string, slot RosterSlot) error
	RemovePlayerFromTeam(teamName, userID string) error
	PromotePlayer(teamName, userID string) error
	SetTeamStatus(teamName string, status TeamStatus) error
	RenameTeam(oldName, newName string) error

	// Week counter
	CurrentWeek() (int, error)
	SetCurrentWeek(week int) error

	// Canonical match rows
	ListMatches() ([]*MatchRecord, error)
	FindMatch(matchID string) (*MatchRecord, error)
	AppendMatch(m MatchRecord) error
	SetMatchSchedule(matchID, proposedDate, scheduledDate string, status MatchStatus) error
	SetMatchOutcome(matchID string, status MatchStatus, winner, loser string) error
	MaxChallengeSequence(week int) (int, error)

	// Match-time proposals
	LiveProposals() ([]*MatchProposal, error)
	FindProposal(matchID string) (*MatchProposal, error)
	FindLiveProposalForPair(teamA, teamB string) (*MatchProposal, error)
	SaveProposal(p MatchProposal) error
	SetProposalPrompt(matchID string, ref PromptRef) error
	DeleteProposal(matchID string) error

	// Score proposals
	LiveScoreProposals() ([]*ScoreProposal, error)
	FindScoreProposal(matchID string) (*ScoreProposal, error)
	SaveScoreProposal(p ScoreProposal) error
	DeleteScoreProposal(matchID string) error

	// Scheduled matches
	ListScheduledMatches() ([]*ScheduledMatch, error)
	UpsertScheduledMatch(m ScheduledMatch) error
	DeleteScheduledMatch(matchID string) error

	// Weekly assignments
	ListWeeklyAssignments() ([]*WeeklyAssignment, error)
	FindWeeklyAssignment(week int, teamA, teamB string) (*WeeklyAssignment, error)
	AppendWeeklyAssignment(a WeeklyAssignment) error
	DeleteWeeklyAssignmentByMatch(matchID string) error
	ClearWeeklyAssignments() error

	// Challenge tracking
	ListChallenges() ([]*ChallengeEntry, error)
	CountChallengesByTeam(week int, teamName string) (int, error)
	AppendChallenge(c ChallengeEntry) error
	DeleteChallengeByMatch(matchID string) error
	ArchiveChallenges() error

	// Finalized results and history
	AppendFinalScore(f FinalScore, proposedDate, scheduledDate string) error
	AppendForfeitHistory(week int, matchID, teamA, teamB, winner, reason string) error
}
