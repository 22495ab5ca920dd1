package matchmaking

import "github.com/mauv0809/league-engine/internal/league"

// Pairing is one emitted weekly match.
type Pairing struct {
	MatchID string
	TeamA   string
	TeamB   string
}

// ForfeitOutcome records how one unresolved prior match was settled.
type ForfeitOutcome struct {
	MatchID string
	TeamA   string
	TeamB   string
	Status  league.MatchStatus
	Winner  string
	Reason  string
}

// CycleResult summarizes one weekly run.
type CycleResult struct {
	Week     int
	Pairings []Pairing
	Forfeits []ForfeitOutcome
	Unpaired []string
}

// seed is one team entering the pairing pass.
type seed struct {
	name   string
	rating int
	bucket int
}
