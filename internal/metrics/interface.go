package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncProposalsCreated()
	IncProposalResponses()
	IncDuplicateResponses()
	IncScoresFinalized()
	IncForfeitsResolved()
	IncWeeklyRuns()
	ObserveMatchmakingDuration(duration float64)
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists named counters across restarts, independently of the
// Prometheus registry which resets with the process.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
