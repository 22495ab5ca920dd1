package notifier

import (
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/ratings"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For the weekly cycle
	AnnounceWeeklyMatchups(week int, assignments []*league.WeeklyAssignment, dryRun bool) error
	SendForfeitNotice(matchID, teamA, teamB, reason, winner string, dryRun bool) error

	// For the proposal protocols
	SendMatchScheduled(m *league.MatchRecord, dryRun bool) error
	SendFinalResult(f *league.FinalScore, dryRun bool) error

	// For slash commands
	SendLeaderboard(entries []ratings.TeamEntry, dryRun bool) error
	SendPlayerLeaderboard(entries []ratings.PlayerEntry, dryRun bool) error

	// For direct messages
	SendDirectMessage(userID, text string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []ratings.TeamEntry) (any, error)
	FormatPlayerLeaderboardResponse(entries []ratings.PlayerEntry) (any, error)
}
