package ratings

import "github.com/mauv0809/league-engine/internal/league"

// Ledger maintains the team and player rating tables. Entries are created on
// first sight at the configured default rating; win/loss deltas are fixed
// amounts rather than expectation-weighted Elo.
type Ledger interface {
	// TeamEntries returns all team entries sorted by rating, highest first.
	TeamEntries() ([]TeamEntry, error)
	// PlayerEntries returns all player entries sorted by rating, highest first.
	PlayerEntries() ([]PlayerEntry, error)
	// TeamRating returns the team's current rating, or the default when the
	// team has no entry yet.
	TeamRating(teamName string) (int, error)
	// ApplyTeamResult credits a win or loss to the team, creating the entry
	// at the default rating first if needed.
	ApplyTeamResult(teamName string, won bool) error
	// ApplyPlayerResult credits a win or loss to the player, creating the
	// entry at the default rating first if needed.
	ApplyPlayerResult(userID, name string, won bool) error
	// SyncTeams ensures every listed team has a ledger entry and drops
	// entries for teams that no longer exist.
	SyncTeams(teams []*league.Team) error
}
