package http

import (
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/matchmaking"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/scoring"
)

func NewServer(store league.Store, ledger ratings.Ledger, metricsSvc metrics.Metrics, metricsHandler http.Handler, metricsStore metrics.MetricsStore, cfg config.Config, n notifier.Notifier, roles league.RoleChecker, proposals proposal.Coordinator, scores scoring.Coordinator, engine matchmaking.Engine, ps pubsub.PubSubClient, clock clockwork.Clock) *Server {
	server := &Server{
		Store:          store,
		Ledger:         ledger,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		MetricsStore:   metricsStore,
		Cfg:            cfg,
		Notifier:       n,
		Roles:          roles,
		Proposals:      proposals,
		Scores:         scores,
		Engine:         engine,
		PubSub:         ps,
		Clock:          clock,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slack-facing routes additionally carry the signature check.
	slackMW := []Middleware{paramsMiddleware, verifySlackMiddleware(s.Cfg.Slack.SigningSecret)}

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/metrics/lifetime", Chain(s.LifetimeMetricsHandler(), paramsMiddleware))
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/teams", Chain(s.ListTeamsHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/generate-weekly", Chain(s.GenerateWeeklyHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/match-finalized", Chain(s.MatchFinalizedPushHandler(), paramsMiddleware))
	s.Router.Handle("/slack/interactivity", Chain(s.InteractivityHandler(), slackMW...))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/player-leaderboard", Chain(s.PlayerLeaderboardCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/propose", Chain(s.ProposeCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/score", Chain(s.ScoreCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/signup", Chain(s.SignupCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/unsignup", Chain(s.UnsignupCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/team", Chain(s.TeamCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/admin", Chain(s.AdminCommandHandler(), slackMW...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
