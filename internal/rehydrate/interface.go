package rehydrate

// Report summarizes one startup rehydration pass.
type Report struct {
	MatchProposals int
	ScoreProposals int
	Orphans        int
}

// Service rebuilds the in-memory coordinator handles from the durable
// proposal rows after a restart.
type Service interface {
	Run() (*Report, error)
}
