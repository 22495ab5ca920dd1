package matchmaking_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/database"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/matchmaking"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine   matchmaking.Engine
	store    league.Store
	ledger   ratings.Ledger
	notifier *notifier.Mock
	events   *pubsub.MockPubSubClient
	metrics  *metrics.Mock
}

func testLeagueConfig() config.LeagueConfig {
	return config.LeagueConfig{
		TeamMinPlayers:      3,
		MinimumTeamsStart:   2,
		EloWinPoints:        25,
		EloLossPoints:       -25,
		ForfeitAffectsElo:   true,
		DefaultTeamRating:   800,
		DefaultPlayerRating: 800,
	}
}

func newFixture(t *testing.T, cfg config.LeagueConfig) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	adapter := tabular.New(db)
	store, err := league.New(adapter)
	require.NoError(t, err)

	ledger, err := ratings.New(adapter, ratings.Options{
		WinDelta: cfg.EloWinPoints, LossDelta: cfg.EloLossPoints,
		DefaultTeamRating: cfg.DefaultTeamRating, DefaultPlayerRating: cfg.DefaultPlayerRating,
	})
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		ledger:   ledger,
		notifier: notifier.NewMock(),
		events:   pubsub.NewMock("test-project"),
		metrics:  metrics.NewMock(),
	}
	resolver := matchmaking.NewResolver(store, ledger, f.notifier, f.metrics, cfg)
	f.engine = matchmaking.New(store, ledger, resolver, f.notifier, f.events, f.metrics, clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)), cfg)
	return f
}

func (f *fixture) addTeam(t *testing.T, name string, roster int) {
	t.Helper()
	require.NoError(t, f.store.CreateTeam(name, league.RosterSlot{
		Name: name + " Captain", UserID: fmt.Sprintf("U-%s-0", name),
	}))
	for i := 1; i < roster; i++ {
		require.NoError(t, f.store.AddPlayerToTeam(name, league.RosterSlot{
			Name: fmt.Sprintf("%s Player %d", name, i), UserID: fmt.Sprintf("U-%s-%d", name, i),
		}))
	}
}

func TestRunWeekly(t *testing.T) {
	t.Run("pairs eligible teams and records the cycle", func(t *testing.T) {
		f := newFixture(t, testLeagueConfig())
		for _, name := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
			f.addTeam(t, name, 3)
		}

		res, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Week)
		assert.NotEmpty(t, res.Pairings)
		assert.Empty(t, res.Unpaired)

		week, err := f.store.CurrentWeek()
		require.NoError(t, err)
		assert.Equal(t, 1, week)

		assignments, err := f.store.ListWeeklyAssignments()
		require.NoError(t, err)
		require.Len(t, assignments, len(res.Pairings))
		assert.Equal(t, "Week1-M001", assignments[0].MatchID)
		assert.Equal(t, "TBD", assignments[0].ScheduledDate)

		m, err := f.store.FindMatch("Week1-M001")
		require.NoError(t, err)
		assert.Equal(t, league.StatusAutoProposed, m.Status)
		assert.Equal(t, "System", m.ProposedBy)

		assert.Equal(t, []int{1}, f.notifier.AnnounceWeeklyMatchupsCalls)
		require.Len(t, f.events.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventWeeklyGenerated), f.events.SendMessageCalls[0].Topic)
		assert.Equal(t, 1, f.metrics.WeeklyRuns())
	})

	t.Run("inactive or short-rostered teams are excluded", func(t *testing.T) {
		f := newFixture(t, testLeagueConfig())
		f.addTeam(t, "Alpha", 3)
		f.addTeam(t, "Beta", 3)
		f.addTeam(t, "Thin", 2)
		f.addTeam(t, "Idle", 3)
		require.NoError(t, f.store.SetTeamStatus("Idle", league.TeamInactive))

		res, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		require.Len(t, res.Pairings, 1)
		assert.ElementsMatch(t, []string{"Alpha", "Beta"}, []string{res.Pairings[0].TeamA, res.Pairings[0].TeamB})
	})

	t.Run("dry run previews the cycle without persisting it", func(t *testing.T) {
		f := newFixture(t, testLeagueConfig())
		f.addTeam(t, "Alpha", 3)
		f.addTeam(t, "Beta", 3)

		res, err := f.engine.RunWeekly(true)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Week)
		require.Len(t, res.Pairings, 1)

		week, err := f.store.CurrentWeek()
		require.NoError(t, err)
		assert.Zero(t, week)

		_, err = f.store.FindMatch(res.Pairings[0].MatchID)
		assert.ErrorIs(t, err, league.ErrNotFound)

		assignments, err := f.store.ListWeeklyAssignments()
		require.NoError(t, err)
		assert.Empty(t, assignments)

		assert.Empty(t, f.events.SendMessageCalls)
		assert.Zero(t, f.metrics.WeeklyRuns())
	})

	t.Run("too few eligible teams aborts the run", func(t *testing.T) {
		f := newFixture(t, testLeagueConfig())
		f.addTeam(t, "Alpha", 3)

		_, err := f.engine.RunWeekly(false)
		assert.Error(t, err)

		week, werr := f.store.CurrentWeek()
		require.NoError(t, werr)
		assert.Zero(t, week)
	})

	t.Run("prior assignments and challenges are archived", func(t *testing.T) {
		f := newFixture(t, testLeagueConfig())
		f.addTeam(t, "Alpha", 3)
		f.addTeam(t, "Beta", 3)

		_, err := f.engine.RunWeekly(false)
		require.NoError(t, err)

		// Finish the week's match so it does not forfeit next cycle.
		require.NoError(t, f.store.SetMatchOutcome("Week1-M001", league.StatusFinished, "Alpha", "Beta"))
		require.NoError(t, f.store.AppendChallenge(league.ChallengeEntry{
			Week: 1, MatchID: "Challenge1-M001", TeamA: "Alpha", TeamB: "Beta",
		}))

		res, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Week)

		challenges, err := f.store.ListChallenges()
		require.NoError(t, err)
		assert.Empty(t, challenges)

		assignments, err := f.store.ListWeeklyAssignments()
		require.NoError(t, err)
		for _, a := range assignments {
			assert.Equal(t, 2, a.Week)
		}
	})
}

func TestForfeitResolution(t *testing.T) {
	setup := func(t *testing.T, cfg config.LeagueConfig) *fixture {
		f := newFixture(t, cfg)
		f.addTeam(t, "Alpha", 3)
		f.addTeam(t, "Beta", 3)
		f.addTeam(t, "Gamma", 3)
		f.addTeam(t, "Delta", 3)
		_, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		return f
	}

	t.Run("one ineligible team forfeits to the other", func(t *testing.T) {
		f := setup(t, testLeagueConfig())
		m, err := f.store.FindMatch("Week1-M001")
		require.NoError(t, err)
		require.NoError(t, f.store.SetTeamStatus(m.TeamB, league.TeamInactive))

		res, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		require.NotEmpty(t, res.Forfeits)

		got, err := f.store.FindMatch(m.MatchID)
		require.NoError(t, err)
		assert.Equal(t, league.StatusForfeited, got.Status)
		assert.Equal(t, m.TeamA, got.Winner)
		assert.Equal(t, m.TeamB, got.Loser)

		// Four equal-rated teams fill the per-cycle cap, so the inactive
		// team sat in two open matches and forfeits both. The slate's
		// other matches double-forfeit without a rating change.
		winner, err := f.ledger.TeamRating(m.TeamA)
		require.NoError(t, err)
		loser, err := f.ledger.TeamRating(m.TeamB)
		require.NoError(t, err)
		assert.Equal(t, 825, winner)
		assert.Equal(t, 750, loser)

		assert.Contains(t, f.notifier.SendForfeitNoticeCalls, m.MatchID)
		assert.Positive(t, f.metrics.ForfeitsResolved())
	})

	t.Run("dry run classifies forfeits without resolving them", func(t *testing.T) {
		f := setup(t, testLeagueConfig())
		m, err := f.store.FindMatch("Week1-M001")
		require.NoError(t, err)
		require.NoError(t, f.store.SetTeamStatus(m.TeamB, league.TeamInactive))

		res, err := f.engine.RunWeekly(true)
		require.NoError(t, err)
		require.NotEmpty(t, res.Forfeits)

		got, err := f.store.FindMatch(m.MatchID)
		require.NoError(t, err)
		assert.Equal(t, league.StatusAutoProposed, got.Status)
		assert.Empty(t, got.Winner)

		rating, err := f.ledger.TeamRating(m.TeamB)
		require.NoError(t, err)
		assert.Equal(t, 800, rating)
		assert.Zero(t, f.metrics.ForfeitsResolved())
	})

	t.Run("ratings untouched when forfeits do not affect elo", func(t *testing.T) {
		cfg := testLeagueConfig()
		cfg.ForfeitAffectsElo = false
		f := setup(t, cfg)
		m, err := f.store.FindMatch("Week1-M001")
		require.NoError(t, err)
		require.NoError(t, f.store.SetTeamStatus(m.TeamB, league.TeamInactive))

		_, err = f.engine.RunWeekly(false)
		require.NoError(t, err)

		got, err := f.store.FindMatch(m.MatchID)
		require.NoError(t, err)
		assert.Equal(t, league.StatusForfeited, got.Status)

		winner, err := f.ledger.TeamRating(m.TeamA)
		require.NoError(t, err)
		assert.Equal(t, 800, winner)
	})

	t.Run("unplayed match between eligible teams is a double forfeit", func(t *testing.T) {
		f := setup(t, testLeagueConfig())
		m, err := f.store.FindMatch("Week1-M001")
		require.NoError(t, err)

		res, err := f.engine.RunWeekly(false)
		require.NoError(t, err)
		require.NotEmpty(t, res.Forfeits)

		got, err := f.store.FindMatch(m.MatchID)
		require.NoError(t, err)
		assert.Equal(t, league.StatusDoubleForfeit, got.Status)
		assert.Empty(t, got.Winner)

		rating, err := f.ledger.TeamRating(m.TeamA)
		require.NoError(t, err)
		assert.Equal(t, 800, rating)
	})

	t.Run("lingering proposal rows are cleaned up", func(t *testing.T) {
		f := setup(t, testLeagueConfig())
		require.NoError(t, f.store.SaveProposal(league.MatchProposal{
			MatchID: "Week1-M001", TeamA: "Alpha", TeamB: "Beta", ProposerID: "U-Alpha-0",
		}))

		_, err := f.engine.RunWeekly(false)
		require.NoError(t, err)

		_, err = f.store.FindProposal("Week1-M001")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})
}
