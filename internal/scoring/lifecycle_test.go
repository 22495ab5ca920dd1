package scoring_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/database"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/matchmaking"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/scoring"
	"github.com/mauv0809/league-engine/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Drives one match through its whole life against a single store: the weekly
// cycle pairs the teams, the captains agree on a time, the score is reported
// and confirmed, and the ratings land on both teams and every player.
func TestMatchLifecycle(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	adapter := tabular.New(db)
	store, err := league.New(adapter)
	require.NoError(t, err)

	cfg := testLeagueConfig()
	cfg.MinimumTeamsStart = 2

	ledger, err := ratings.New(adapter, ratings.Options{
		WinDelta: 25, LossDelta: -25, DefaultTeamRating: 800, DefaultPlayerRating: 800,
	})
	require.NoError(t, err)

	require.NoError(t, store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))
	require.NoError(t, store.AddPlayerToTeam("Alpha", league.RosterSlot{Name: "Amy", UserID: "U2"}))
	require.NoError(t, store.AddPlayerToTeam("Alpha", league.RosterSlot{Name: "Ann", UserID: "U3"}))
	require.NoError(t, store.CreateTeam("Beta", league.RosterSlot{Name: "Bob", UserID: "U5"}))
	require.NoError(t, store.AddPlayerToTeam("Beta", league.RosterSlot{Name: "Ben", UserID: "U6"}))
	require.NoError(t, store.AddPlayerToTeam("Beta", league.RosterSlot{Name: "Bea", UserID: "U7"}))

	// Alpha 1100, Beta 1050: both Platinum, so the cycle pairs them in band.
	for i := 0; i < 12; i++ {
		require.NoError(t, ledger.ApplyTeamResult("Alpha", true))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.ApplyTeamResult("Beta", true))
	}

	clock := clockwork.NewFakeClockAt(testNow)
	notif := notifier.NewMock()
	prompter := prompt.NewMock()
	events := pubsub.NewMock("test-project")
	mets := metrics.NewMock()
	roles := &league.MockRoleChecker{}

	resolver := matchmaking.NewResolver(store, ledger, notif, mets, cfg)
	engine := matchmaking.New(store, ledger, resolver, notif, events, mets, clock, cfg)
	proposals := proposal.New(store, prompter, notif, roles, mets, clock, cfg, false)
	scores := scoring.New(store, ledger, prompter, notif, events, roles, mets, clock, cfg, false)

	// Week 1: the two teams are paired.
	cycle, err := engine.RunWeekly(false)
	require.NoError(t, err)
	require.Len(t, cycle.Pairings, 1)
	pairing := cycle.Pairings[0]
	assert.Equal(t, "Week1-M001", pairing.MatchID)

	// Alpha's captain proposes a time and Beta's captain accepts it.
	p, err := proposals.Propose(proposal.ProposeRequest{
		TeamA:        pairing.TeamA,
		TeamB:        pairing.TeamB,
		ProposedTime: testNow.Add(48 * time.Hour),
		MatchType:    league.MatchAssigned,
		ProposerID:   "U1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Week1-M001", p.MatchID)
	require.NoError(t, proposals.Respond("Week1-M001", proposal.Accept, "U5"))

	m, err := store.FindMatch("Week1-M001")
	require.NoError(t, err)
	assert.Equal(t, league.StatusScheduled, m.Status)

	// Alpha reports a 5-2 win and Beta's captain confirms.
	_, err = scores.ProposeScore(scoring.ProposeRequest{
		MatchID: "Week1-M001",
		Maps: []league.MapResult{
			{Gamemode: "Payload", ScoreA: 3, ScoreB: 1},
			{Gamemode: "Control", ScoreA: 2, ScoreB: 1},
		},
		ProposerID: "U1",
	})
	require.NoError(t, err)
	require.NoError(t, scores.Respond("Week1-M001", scoring.Accept, "U5"))

	m, err = store.FindMatch("Week1-M001")
	require.NoError(t, err)
	assert.Equal(t, league.StatusFinished, m.Status)
	assert.Equal(t, "Alpha", m.Winner)
	assert.Equal(t, "Beta", m.Loser)

	require.Len(t, notif.SendFinalResultCalls, 1)
	final := notif.SendFinalResultCalls[0]
	assert.Equal(t, 1, final.Week)
	assert.Equal(t, 5, final.TotalA)
	assert.Equal(t, 2, final.TotalB)
	assert.Equal(t, "Alpha", final.Winner)

	alpha, err := ledger.TeamRating("Alpha")
	require.NoError(t, err)
	beta, err := ledger.TeamRating("Beta")
	require.NoError(t, err)
	assert.Equal(t, 1125, alpha)
	assert.Equal(t, 1025, beta)

	players, err := ledger.PlayerEntries()
	require.NoError(t, err)
	require.Len(t, players, 6)
	for _, pe := range players {
		switch pe.UserID {
		case "U1", "U2", "U3":
			assert.Equal(t, 825, pe.Rating, pe.UserID)
			assert.Equal(t, 1, pe.Wins, pe.UserID)
		default:
			assert.Equal(t, 775, pe.Rating, pe.UserID)
			assert.Equal(t, 1, pe.Losses, pe.UserID)
		}
	}

	// No live rows survive the finished match.
	_, err = store.FindScoreProposal("Week1-M001")
	assert.ErrorIs(t, err, league.ErrNotFound)
	_, err = store.FindProposal("Week1-M001")
	assert.ErrorIs(t, err, league.ErrNotFound)
	scheduled, err := store.ListScheduledMatches()
	require.NoError(t, err)
	assert.Empty(t, scheduled)
}
