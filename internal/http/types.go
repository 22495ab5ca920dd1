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

type Server struct {
	Store          league.Store
	Ledger         ratings.Ledger
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	MetricsStore   metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Roles          league.RoleChecker
	Proposals      proposal.Coordinator
	Scores         scoring.Coordinator
	Engine         matchmaking.Engine
	PubSub         pubsub.PubSubClient
	Clock          clockwork.Clock
	Router         *http.ServeMux
}
