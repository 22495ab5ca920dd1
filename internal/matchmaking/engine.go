package matchmaking

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
)

type engine struct {
	store    league.Store
	ledger   ratings.Ledger
	resolver Resolver
	notifier notifier.Notifier
	events   pubsub.PubSubClient
	metrics  metrics.Metrics
	clock    clockwork.Clock
	cfg      config.LeagueConfig

	// One cycle at a time.
	mu sync.Mutex
}

// New creates the weekly matchmaking Engine.
func New(store league.Store, ledger ratings.Ledger, resolver Resolver, n notifier.Notifier, events pubsub.PubSubClient, m metrics.Metrics, clock clockwork.Clock, cfg config.LeagueConfig) Engine {
	return &engine{
		store:    store,
		ledger:   ledger,
		resolver: resolver,
		notifier: n,
		events:   events,
		metrics:  m,
		clock:    clock,
		cfg:      cfg,
	}
}

func (e *engine) RunWeekly(dryRun bool) (*CycleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := e.clock.Now()

	teams, err := e.store.ListTeams()
	if err != nil {
		return nil, err
	}
	if !dryRun {
		if err := e.ledger.SyncTeams(teams); err != nil {
			return nil, err
		}
	}

	eligible := make(map[string]bool, len(teams))
	var eligibleCount int
	for _, t := range teams {
		ok := t.Status == league.TeamActive && len(t.Roster) >= e.cfg.TeamMinPlayers
		eligible[t.Name] = ok
		if ok {
			eligibleCount++
		}
	}

	forfeits, err := e.resolver.ResolvePrior(eligible, dryRun)
	if err != nil {
		return nil, err
	}

	if eligibleCount < e.cfg.MinimumTeamsStart {
		return nil, fmt.Errorf("only %d eligible teams, need at least %d", eligibleCount, e.cfg.MinimumTeamsStart)
	}

	// Last week's leftovers make room for the new cycle.
	if !dryRun {
		if err := e.store.ArchiveChallenges(); err != nil {
			return nil, err
		}
		if err := e.store.ClearWeeklyAssignments(); err != nil {
			return nil, err
		}
	}

	week, err := e.store.CurrentWeek()
	if err != nil {
		return nil, err
	}
	week++
	if !dryRun {
		if err := e.store.SetCurrentWeek(week); err != nil {
			return nil, err
		}
	}

	seeds := make([]seed, 0, eligibleCount)
	for _, t := range teams {
		if !eligible[t.Name] {
			continue
		}
		rating, err := e.ledger.TeamRating(t.Name)
		if err != nil {
			// A dry run skips the ledger sync, so a brand-new team may
			// have no entry yet; seed it at the default instead.
			if !dryRun {
				log.Warn("Skipping team with no rating entry", "team", t.Name, "error", err)
				continue
			}
			rating = e.cfg.DefaultTeamRating
		}
		seeds = append(seeds, seed{name: t.Name, rating: rating, bucket: bucketIndex(rating)})
	}

	pairs, unpaired := pairCycle(seeds)

	result := &CycleResult{Week: week, Forfeits: forfeits, Unpaired: unpaired}
	assignments := make([]*league.WeeklyAssignment, 0, len(pairs))
	for i, pair := range pairs {
		matchID := fmt.Sprintf("Week%d-M%03d", week, i+1)
		a := league.WeeklyAssignment{
			Week: week, TeamA: pair[0], TeamB: pair[1], MatchID: matchID, ScheduledDate: "TBD",
		}
		if !dryRun {
			if err := e.store.AppendWeeklyAssignment(a); err != nil {
				return nil, err
			}
			if err := e.store.AppendMatch(league.MatchRecord{
				MatchID: matchID, TeamA: pair[0], TeamB: pair[1],
				ProposedDate: "TBD", Status: league.StatusAutoProposed, ProposedBy: "System",
			}); err != nil {
				return nil, err
			}
		}
		assignments = append(assignments, &a)
		result.Pairings = append(result.Pairings, Pairing{MatchID: matchID, TeamA: pair[0], TeamB: pair[1]})
	}

	if err := e.notifier.AnnounceWeeklyMatchups(week, assignments, dryRun); err != nil {
		log.Warn("Failed to announce weekly matchups", "error", err, "week", week)
	}
	if !dryRun {
		if err := e.events.SendMessage(pubsub.EventWeeklyGenerated, pubsub.WeeklyGeneratedEvent{
			Week: week, Pairings: len(pairs), Forfeits: len(forfeits),
		}); err != nil {
			log.Warn("Failed to publish weekly cycle event", "error", err, "week", week)
		}
		e.metrics.IncWeeklyRuns()
	}
	e.metrics.ObserveMatchmakingDuration(e.clock.Since(start).Seconds())
	log.Info("Weekly cycle complete", "week", week, "pairings", len(pairs), "forfeits", len(forfeits), "unpaired", len(unpaired), "dryRun", dryRun)
	return result, nil
}
