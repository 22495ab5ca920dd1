package matchmaking

// Engine runs one weekly matchmaking cycle: resolve the prior week's
// unplayed matches as forfeits, advance the week counter, bucket the
// eligible teams by rating and emit the new pairings.
type Engine interface {
	// RunWeekly executes the full cycle and returns what it produced.
	// It must not run concurrently with itself.
	RunWeekly(dryRun bool) (*CycleResult, error)
}

// Resolver classifies the prior cycle's unresolved matches by current team
// eligibility and applies forfeit outcomes.
type Resolver interface {
	// ResolvePrior examines every non-terminal match and settles it as a
	// forfeit or double forfeit. eligible maps team name to current
	// eligibility.
	ResolvePrior(eligible map[string]bool, dryRun bool) ([]ForfeitOutcome, error)
}
