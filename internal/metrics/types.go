package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	ProposalsCreated    prometheus.Counter
	ProposalResponses   prometheus.Counter
	DuplicateResponses  prometheus.Counter
	ScoresFinalized     prometheus.Counter
	ForfeitsResolved    prometheus.Counter
	WeeklyRuns          prometheus.Counter
	MatchmakingDuration prometheus.Histogram
	NotifSent           prometheus.Counter
	NotifFailed         prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge

	store MetricsStore
}
