package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ProposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_proposals_created_total",
			Help: "The total number of match-time and score proposals created.",
		}),
		ProposalResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_proposal_responses_total",
			Help: "The total number of proposal responses processed.",
		}),
		DuplicateResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_duplicate_responses_total",
			Help: "The total number of responses rejected because the proposal was already settled.",
		}),
		ScoresFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_scores_finalized_total",
			Help: "The total number of match scores finalized.",
		}),
		ForfeitsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_forfeits_resolved_total",
			Help: "The total number of unplayed matches resolved as forfeits.",
		}),
		WeeklyRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_weekly_runs_total",
			Help: "The total number of weekly matchmaking cycles run.",
		}),
		MatchmakingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_matchmaking_duration_seconds",
			Help:    "The duration of a full matchmaking cycle.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ProposalsCreated,
		s.ProposalResponses,
		s.DuplicateResponses,
		s.ScoresFinalized,
		s.ForfeitsResolved,
		s.WeeklyRuns,
		s.MatchmakingDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

// WithStore attaches a durable counter store. Counters that describe league
// history, not process health, are mirrored there so they survive restarts.
func (s *Service) WithStore(store MetricsStore) *Service {
	s.store = store
	return s
}

func (s *Service) persist(key string) {
	if s.store != nil {
		s.store.Increment(key)
	}
}

func (s *Service) IncProposalsCreated() {
	s.ProposalsCreated.Inc()
	s.persist("proposals_created")
}

func (s *Service) IncProposalResponses() {
	s.ProposalResponses.Inc()
}

func (s *Service) IncDuplicateResponses() {
	s.DuplicateResponses.Inc()
}

func (s *Service) IncScoresFinalized() {
	s.ScoresFinalized.Inc()
	s.persist("scores_finalized")
}

func (s *Service) IncForfeitsResolved() {
	s.ForfeitsResolved.Inc()
	s.persist("forfeits_resolved")
}

func (s *Service) IncWeeklyRuns() {
	s.WeeklyRuns.Inc()
	s.persist("weekly_runs")
}

func (s *Service) ObserveMatchmakingDuration(duration float64) {
	s.MatchmakingDuration.Observe(duration)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
